// Package vocabulary loads the read-only lookup tables of valid canonical
// values per entity type.
package vocabulary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Tables maps entity type names to their valid canonical values.
// Lookups are diacritic- and case-insensitive; the canonical spelling is
// always returned.
type Tables struct {
	values map[string][]string
	folded map[string]map[string]string
}

// New builds tables from an in-memory map.
func New(values map[string][]string) *Tables {
	t := &Tables{
		values: make(map[string][]string, len(values)),
		folded: make(map[string]map[string]string, len(values)),
	}
	for entityType, vals := range values {
		t.values[entityType] = append([]string(nil), vals...)
		idx := make(map[string]string, len(vals))
		for _, v := range vals {
			idx[Fold(v)] = v
		}
		t.folded[entityType] = idx
	}
	return t
}

// Load reads lookup tables from a YAML file. Two layouts are accepted:
// a plain mapping from entity type to a value list, and the NLU training
// format where lookups live under an "nlu:" list with "- value" example
// lines.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML lookup tables from raw bytes.
func Parse(data []byte) (*Tables, error) {
	var nluDoc struct {
		NLU []struct {
			Lookup   string `yaml:"lookup"`
			Examples string `yaml:"examples"`
		} `yaml:"nlu"`
	}
	if err := yaml.Unmarshal(data, &nluDoc); err == nil && len(nluDoc.NLU) > 0 {
		values := make(map[string][]string, len(nluDoc.NLU))
		for _, item := range nluDoc.NLU {
			if item.Lookup == "" {
				continue
			}
			values[item.Lookup] = parseExampleLines(item.Examples)
		}
		return New(values), nil
	}

	var plain map[string][]string
	if err := yaml.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	return New(plain), nil
}

// parseExampleLines strips the "- " list markers from an NLU examples block.
func parseExampleLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if line != "" && line != "-" {
			out = append(out, line)
		}
	}
	return out
}

// Types returns the known entity type names, sorted.
func (t *Tables) Types() []string {
	types := make([]string, 0, len(t.values))
	for k := range t.values {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// Has reports whether a lookup table exists for the entity type.
func (t *Tables) Has(entityType string) bool {
	_, ok := t.values[entityType]
	return ok
}

// Values returns the canonical values for an entity type.
func (t *Tables) Values(entityType string) []string {
	return t.values[entityType]
}

// Canonical resolves a raw value to its canonical spelling in the entity
// type's table, ignoring case and diacritics.
func (t *Tables) Canonical(entityType, value string) (string, bool) {
	idx, ok := t.folded[entityType]
	if !ok {
		return "", false
	}
	canonical, ok := idx[Fold(value)]
	return canonical, ok
}

// FindType searches every table for a value and returns the entity type
// that contains it. Used to offer type corrections.
func (t *Tables) FindType(value string) (string, bool) {
	folded := Fold(value)
	for _, entityType := range t.Types() {
		if _, ok := t.folded[entityType][folded]; ok {
			return entityType, true
		}
	}
	return "", false
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips diacritics so "Doxiciclína" matches "doxiciclina".
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
