package testsupport

import "gndmatch/internal/config"

// Default JSON-LD identifiers used by DNB fixtures.
var (
	dnbKeys   = config.Default().DNB
	DNBPrefix = dnbKeys.IDPrefix
)

// DNBNode builds a JSON-LD authority node as it appears in a DNB dump.
// sameAs entries are full IRIs.
func DNBNode(dnbID, prefName string, variants []string, sameAs ...string) map[string]any {
	node := map[string]any{"@id": DNBPrefix + dnbID}
	if prefName != "" {
		node[dnbKeys.PrefNameKey] = []any{map[string]any{"@value": prefName, "@language": "de"}}
	}
	if len(variants) > 0 {
		values := make([]any, 0, len(variants))
		for _, v := range variants {
			values = append(values, map[string]any{"@value": v})
		}
		node[dnbKeys.VariantNameKey] = values
	}
	if len(sameAs) > 0 {
		links := make([]any, 0, len(sameAs))
		for _, iri := range sameAs {
			links = append(links, map[string]any{"@id": iri})
		}
		node[dnbKeys.SameAsKey] = links
	}
	return node
}

// WithOldAuthorities adds old authority number values to a DNB node.
func WithOldAuthorities(node map[string]any, numbers ...string) map[string]any {
	values := make([]any, 0, len(numbers))
	for _, n := range numbers {
		values = append(values, map[string]any{"@value": n})
	}
	node[dnbKeys.OldAuthorityKey] = values
	return node
}

// DNBDump wraps nodes the way the DNB dump nests them: an array holding one
// array of nodes per record.
func DNBDump(nodes ...map[string]any) []any {
	dump := make([]any, 0, len(nodes))
	for _, n := range nodes {
		dump = append(dump, []any{n})
	}
	return dump
}

// GazName is a Gazetteer alternate name fixture.
type GazName struct {
	Title    string
	Language string
	Ancient  bool
}

// GazObject builds a Gazetteer record. gndIDs become identifiers with
// context GND.
func GazObject(gazID any, prefTitle string, names []GazName, gndIDs ...string) map[string]any {
	obj := map[string]any{
		"gazId":    gazID,
		"prefName": map[string]any{"title": prefTitle, "language": "deu"},
	}
	if len(names) > 0 {
		list := make([]any, 0, len(names))
		for _, n := range names {
			list = append(list, map[string]any{
				"title":          n.Title,
				"language":       n.Language,
				"ancient":        n.Ancient,
				"transliterated": false,
			})
		}
		obj["names"] = list
	}
	idents := []any{map[string]any{"value": "Q64", "context": "wikidata"}}
	for _, id := range gndIDs {
		idents = append(idents, map[string]any{"value": id, "context": "GND"})
	}
	obj["identifiers"] = idents
	return obj
}
