package zergmgr

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
)

// FlagValue is the value recorded for a key that appears without one.
// uwsgi treats any bare key as enabled, so serialization writes the
// literal truthy token back out.
const FlagValue = "true"

var sectionNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Pair is a single key/value entry within a Section
type Pair struct {
	Key   string
	Value string
}

// Section is a named, ordered sequence of key/value pairs. Keys are not
// unique: the same key may appear any number of times, and uwsgi
// accumulates repeated directives such as plugin or hook-* entries.
// Lookup by key returns the most recently appended value; iteration
// yields all pairs in insertion order.
type Section struct {
	// Name is the section name, unique within a Document
	Name string

	pairs []Pair
}

// Append adds a key/value pair at the end of the section
func (s *Section) Append(key, value string) {
	s.pairs = append(s.pairs, Pair{Key: key, Value: value})
}

// AppendFlag adds a value-less key, recorded with FlagValue
func (s *Section) AppendFlag(key string) {
	s.Append(key, FlagValue)
}

// Get returns the most recently appended value for key
func (s *Section) Get(key string) (string, bool) {
	for i := len(s.pairs) - 1; i >= 0; i-- {
		if s.pairs[i].Key == key {
			return s.pairs[i].Value, true
		}
	}
	return "", false
}

// GetAll returns every value for key in insertion order
func (s *Section) GetAll(key string) []string {
	var values []string
	for _, p := range s.pairs {
		if p.Key == key {
			values = append(values, p.Value)
		}
	}
	return values
}

// Reset removes every pair with the given key
func (s *Section) Reset(key string) {
	kept := s.pairs[:0]
	for _, p := range s.pairs {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	s.pairs = kept
}

// Pairs returns a copy of all pairs in insertion order
func (s *Section) Pairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Len returns the number of pairs in the section
func (s *Section) Len() int {
	return len(s.pairs)
}

// Document is an ordered collection of uniquely named Sections,
// representing one uwsgi ini file. First-insertion order of sections is
// preserved on serialization. Comments are not retained.
type Document struct {
	sections []*Section
}

// NewDocument creates an empty Document
func NewDocument() *Document {
	return &Document{}
}

// Section returns the named section, or nil if absent
func (d *Document) Section(name string) *Section {
	for _, s := range d.sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Has reports whether the named section exists
func (d *Document) Has(name string) bool {
	return d.Section(name) != nil
}

// EnsureSection returns the named section, creating an empty one at the
// end of the document if absent
func (d *Document) EnsureSection(name string) *Section {
	if s := d.Section(name); s != nil {
		return s
	}
	s := &Section{Name: name}
	d.sections = append(d.sections, s)
	return s
}

// SetSection discards any previous section of that name and rebuilds it
// from scratch with the given pairs
func (d *Document) SetSection(name string, pairs ...Pair) *Section {
	d.DeleteSection(name)
	s := d.EnsureSection(name)
	s.pairs = append(s.pairs, pairs...)
	return s
}

// DeleteSection removes the named section; removing an absent section is
// a no-op
func (d *Document) DeleteSection(name string) {
	for i, s := range d.sections {
		if s.Name == name {
			d.sections = append(d.sections[:i], d.sections[i+1:]...)
			return
		}
	}
}

// Sections returns all sections in document order
func (d *Document) Sections() []*Section {
	out := make([]*Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// ParseDocument parses ini text. Blank lines and lines starting with ';'
// are skipped. Section headers must be bracketed names matching
// [A-Za-z0-9_-]+. A line without '=' is recorded as a flag. A duplicate
// section header restarts that section in place.
func ParseDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	var current *Section

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if line[0] == '[' {
			if line[len(line)-1] != ']' {
				return nil, &ParseError{Line: i + 1, Msg: "section header has no closing bracket"}
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if !sectionNameRE.MatchString(name) {
				return nil, &ParseError{Line: i + 1, Msg: fmt.Sprintf("invalid section name %q", name)}
			}
			if existing := doc.Section(name); existing != nil {
				existing.pairs = nil
				current = existing
			} else {
				current = doc.EnsureSection(name)
			}
			continue
		}
		if current == nil {
			return nil, &ParseError{Line: i + 1, Msg: "entry outside of any section"}
		}
		if key, value, ok := strings.Cut(line, "="); ok {
			current.Append(strings.TrimSpace(key), strings.TrimSpace(value))
		} else {
			current.AppendFlag(line)
		}
	}
	return doc, nil
}

// Marshal serializes the document: each section as its bracketed header
// followed by one "key = value" line per pair, then a blank line
func (d *Document) Marshal() []byte {
	var buf bytes.Buffer
	for _, s := range d.sections {
		fmt.Fprintf(&buf, "[%s]\n", s.Name)
		for _, p := range s.pairs {
			fmt.Fprintf(&buf, "%s = %s\n", p.Key, p.Value)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// String returns the serialized document as text
func (d *Document) String() string {
	return string(d.Marshal())
}

// LoadDocument reads and parses the document at path. A missing file
// yields an empty document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// WriteFile atomically persists the document at path
func (d *Document) WriteFile(path string) error {
	return renameio.WriteFile(path, d.Marshal(), FileMode)
}
