package store

import (
	"fmt"
	"strings"
)

// Category selects which pair of text columns a match run compares.
type Category string

const (
	// CategoryMeta compares DNB preferred names with Gazetteer preferred titles.
	CategoryMeta Category = "meta"
	// CategoryName compares DNB variant names with Gazetteer name titles.
	CategoryName Category = "name"
)

// Categories lists every match category in display order.
func Categories() []Category {
	return []Category{CategoryMeta, CategoryName}
}

// ParseCategory maps user input onto a Category. "names" is accepted as an
// alias for the name category.
func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "meta":
		return CategoryMeta, nil
	case "name", "names":
		return CategoryName, nil
	default:
		return "", fmt.Errorf("%w: %q (want meta or name)", ErrUnknownCategory, value)
	}
}

// Accepts reports whether score qualifies at threshold t. Meta candidates
// include the threshold itself; name candidates must exceed it.
func (c Category) Accepts(score, t float64) bool {
	if c == CategoryName {
		return score > t
	}
	return score >= t
}

// Comparator returns the SQL operator matching Accepts.
func (c Category) Comparator() string {
	if c == CategoryName {
		return ">"
	}
	return ">="
}

func (c Category) String() string { return string(c) }

func (c Category) valid() error {
	switch c {
	case CategoryMeta, CategoryName:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
}

type categoryTables struct {
	candidates string
	dnbColumn  string
	gazColumn  string
	dnbTexts   string
	gazTexts   string
	view       string
}

var tablesByCategory = map[Category]categoryTables{
	CategoryMeta: {
		candidates: "fuzzy_meta",
		dnbColumn:  "dnb_meta_id",
		gazColumn:  "gaz_meta_id",
		dnbTexts:   "SELECT id, pref_name FROM dnb_meta WHERE pref_name IS NOT NULL ORDER BY id",
		gazTexts:   "SELECT id, pref_title FROM gaz_meta WHERE pref_title IS NOT NULL ORDER BY id",
		view:       "match_meta",
	},
	CategoryName: {
		candidates: "fuzzy_name",
		dnbColumn:  "dnb_name_id",
		gazColumn:  "gaz_name_id",
		dnbTexts:   "SELECT id, var_name FROM dnb_name ORDER BY id",
		gazTexts:   "SELECT id, title FROM gaz_name ORDER BY id",
		view:       "match_name",
	},
}

func (c Category) tables() (categoryTables, error) {
	if err := c.valid(); err != nil {
		return categoryTables{}, err
	}
	return tablesByCategory[c], nil
}
