package scenegraph

import (
	"regexp"
	"strconv"
	"strings"
)

// Entry kinds.
const (
	KindObject       = "object"
	KindRelationship = "relationship"
)

// Entry is one scene-graph tuple. Serial is the 1-based number the model
// assigned in its list; Raw keeps the original line for audit. Tuple fields
// are best-effort: an entry the lenient parse could not decompose still
// counts, with only Serial and Raw set.
type Entry struct {
	Serial int    `json:"serial"`
	Kind   string `json:"kind,omitempty"`
	Raw    string `json:"raw"`

	// Object fields.
	Name      string `json:"name,omitempty"`
	Attribute string `json:"attribute,omitempty"`

	// Relationship fields.
	Source      string `json:"source,omitempty"`
	Target      string `json:"target,omitempty"`
	Description string `json:"description,omitempty"`
	Strength    int    `json:"strength,omitempty"`
}

// Graph is an ordered scene graph paired with the raw model text it was
// parsed from.
type Graph struct {
	Entries []Entry `json:"entries"`
	Raw     string  `json:"raw"`
}

// ConceptCount returns the number of entries; this is the denominator for
// hallucination/omission scoring.
func (g *Graph) ConceptCount() int {
	return len(g.Entries)
}

// Lookup returns the entry with the given serial, if present.
func (g *Graph) Lookup(serial int) (Entry, bool) {
	for _, e := range g.Entries {
		if e.Serial == serial {
			return e, true
		}
	}
	return Entry{}, false
}

const tupleDelimiter = "{tuple_delimiter}"

var entryMarker = regexp.MustCompile(`^\s*(\d+)\.\s*(.*)$`)

// Parse scans raw model output for numbered entries. Parsing is deliberately
// lenient: the entry count comes from counting leading "<N>." markers, and
// tuple decomposition is best-effort. Empty or unparseable text yields a
// zero-entry graph; captions can legitimately be sparse.
func Parse(raw string) *Graph {
	g := &Graph{Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		m := entryMarker.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		serial, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entry := Entry{Serial: serial, Raw: strings.TrimSpace(line)}
		decomposeTuple(&entry, m[2])
		g.Entries = append(g.Entries, entry)
	}

	return g
}

// decomposeTuple fills in tuple fields when the body matches the expected
// ("object"...) or ("relationship"...) shape; otherwise it leaves the entry
// with only serial and raw text.
func decomposeTuple(entry *Entry, body string) {
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "{record_delimiter}")
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return
	}
	fields := strings.Split(body[1:len(body)-1], tupleDelimiter)
	kind := strings.Trim(fields[0], `"`)

	switch {
	case kind == KindObject && len(fields) == 3:
		entry.Kind = KindObject
		entry.Name = strings.TrimSpace(fields[1])
		entry.Attribute = strings.TrimSpace(fields[2])
	case kind == KindRelationship && len(fields) == 5:
		entry.Kind = KindRelationship
		entry.Source = strings.TrimSpace(fields[1])
		entry.Target = strings.TrimSpace(fields[2])
		entry.Description = strings.TrimSpace(fields[3])
		if strength, err := strconv.Atoi(strings.TrimSpace(fields[4])); err == nil {
			entry.Strength = strength
		}
	}
}
