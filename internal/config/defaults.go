package config

const (
	defaultStorePath        = "~/.local/share/gndmatch/gndmatch.db"
	defaultStoreCacheSize   = 1000000
	defaultProgressEvery    = 10000
	defaultDNBIDPrefix      = "https://d-nb.info/gnd/"
	defaultSameAsKey        = "http://www.w3.org/2002/07/owl#sameAs"
	defaultPrefNameKey      = "https://d-nb.info/standards/elementset/gnd#preferredNameForThePlaceOrGeographicName"
	defaultVariantNameKey   = "https://d-nb.info/standards/elementset/gnd#variantNameForThePlaceOrGeographicName"
	defaultOldAuthorityKey  = "https://d-nb.info/standards/elementset/gnd#oldAuthorityNumber"
	defaultThreshold        = 0.8
	defaultExportFormat     = "csv"
	defaultExportDelimiter  = "|"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	envDatabasePath         = "GNDMATCH_DB"
	envThreshold            = "GNDMATCH_THRESHOLD"
	exportFormatCSV         = "csv"
	exportFormatParquet     = "parquet"
	maxExportDelimiterRunes = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			Path:      defaultStorePath,
			CacheSize: defaultStoreCacheSize,
		},
		Ingest: Ingest{
			ProgressEvery: defaultProgressEvery,
		},
		DNB: DNB{
			IDPrefix:        defaultDNBIDPrefix,
			SameAsKey:       defaultSameAsKey,
			PrefNameKey:     defaultPrefNameKey,
			VariantNameKey:  defaultVariantNameKey,
			OldAuthorityKey: defaultOldAuthorityKey,
		},
		Match: Match{
			Threshold: defaultThreshold,
		},
		Export: Export{
			Format:    defaultExportFormat,
			Delimiter: defaultExportDelimiter,
			Threshold: defaultThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
