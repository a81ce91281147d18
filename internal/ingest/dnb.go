package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gndmatch/internal/config"
	"gndmatch/internal/store"
)

// Namespaces of the owl:sameAs cross references kept on a DNB record.
const (
	geoNamesNamespace = "https://sws.geonames.org/"
	locNamespace      = "http://id.loc.gov/rwo/agents/"
	viafNamespace     = "http://viaf.org/viaf/"
	wikidataNamespace = "http://www.wikidata.org/entity/"
	aboutSuffix       = "/about"
)

// ldValue is one entry of a JSON-LD list property: either a node reference
// ({"@id": ...}) or a literal ({"@value": ...}).
type ldValue struct {
	ID    string `json:"@id"`
	Value any    `json:"@value"`
}

type dnbMapper struct {
	keys         config.DNB
	oldAuthority bool
}

// mapNode converts one JSON-LD node into a DNBRecord.
func (m dnbMapper) mapNode(raw json.RawMessage) (store.DNBRecord, error) {
	if firstByte(raw) != '{' {
		return store.DNBRecord{}, fmt.Errorf("%w: expected object", ErrMalformed)
	}
	var node map[string]json.RawMessage
	if err := decodeNumber(raw, &node); err != nil {
		return store.DNBRecord{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var id string
	if rawID, ok := node["@id"]; ok {
		if err := json.Unmarshal(rawID, &id); err != nil {
			return store.DNBRecord{}, fmt.Errorf("%w: @id is not a string", ErrMalformed)
		}
	}
	if id == "" {
		return store.DNBRecord{}, fmt.Errorf("%w: missing @id", ErrMalformed)
	}
	if !strings.HasPrefix(id, m.keys.IDPrefix) || strings.HasSuffix(id, aboutSuffix) {
		return store.DNBRecord{}, fmt.Errorf("%w: %s", errForeign, id)
	}
	rec := store.DNBRecord{DNBID: strings.TrimPrefix(id, m.keys.IDPrefix)}
	if rec.DNBID == "" {
		return store.DNBRecord{}, fmt.Errorf("%w: empty id after namespace %s", ErrMalformed, m.keys.IDPrefix)
	}

	for _, link := range listProperty(node[m.keys.SameAsKey]) {
		m.assignSameAs(&rec, link.ID)
	}

	if prefs := listProperty(node[m.keys.PrefNameKey]); len(prefs) > 0 {
		rec.PrefName = literal(prefs[0].Value)
	}

	for _, v := range listProperty(node[m.keys.VariantNameKey]) {
		if name := literal(v.Value); name != "" {
			rec.VariantNames = append(rec.VariantNames, name)
		}
	}

	if m.oldAuthority {
		for _, v := range listProperty(node[m.keys.OldAuthorityKey]) {
			if number := literal(v.Value); number != "" {
				rec.OldAuthorities = append(rec.OldAuthorities, ParseOldAuthority(number))
			}
		}
	}
	return rec, nil
}

// assignSameAs stores iri under its namespace. The first link per namespace
// wins; unknown namespaces are ignored.
func (m dnbMapper) assignSameAs(rec *store.DNBRecord, iri string) {
	if iri == "" {
		return
	}
	targets := []struct {
		namespace string
		dest      *string
	}{
		{geoNamesNamespace, &rec.GeoNamesID},
		{m.keys.IDPrefix, &rec.GNDID},
		{locNamespace, &rec.LoCID},
		{viafNamespace, &rec.VIAFID},
		{wikidataNamespace, &rec.WikidataID},
	}
	for _, target := range targets {
		if *target.dest == "" && strings.HasPrefix(iri, target.namespace) {
			*target.dest = strings.TrimPrefix(iri, target.namespace)
		}
	}
}

// listProperty decodes a JSON-LD property that is normally a list but may be
// a single value. Undecodable values yield nothing.
func listProperty(raw json.RawMessage) []ldValue {
	switch firstByte(raw) {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		out := make([]ldValue, 0, len(items))
		for _, item := range items {
			if v, ok := decodeLDValue(item); ok {
				out = append(out, v)
			}
		}
		return out
	case '{', '"':
		if v, ok := decodeLDValue(raw); ok {
			return []ldValue{v}
		}
	}
	return nil
}

func decodeLDValue(raw json.RawMessage) (ldValue, bool) {
	if firstByte(raw) == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ldValue{}, false
		}
		return ldValue{Value: s}, true
	}
	var v ldValue
	if err := decodeNumber(raw, &v); err != nil {
		return ldValue{}, false
	}
	return v, true
}

func literal(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

func decodeNumber(raw json.RawMessage, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dest)
}
