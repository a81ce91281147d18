// Package export projects stored match candidates into CSV or Parquet files,
// one row per DNB record joined to its Gazetteer match and GND identifier.
package export
