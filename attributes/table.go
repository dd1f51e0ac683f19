package attributes

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// TableFormatVersion is the only table file version understood.
const TableFormatVersion = 1

var (
	// ErrUnknownKind is returned by Lookup for a kind the table lacks
	ErrUnknownKind = errors.New("attribute kind not in table")

	// ErrVersionRange is returned by Lookup when the entry excludes the negotiated version
	ErrVersionRange = errors.New("attribute not available for protocol version")
)

// Table is a validated set of attribute entries. It is immutable once built.
type Table struct {
	entries []Entry
	byKind  map[Kind]int
}

type tableFile struct {
	Version    int     `yaml:"version"`
	Attributes []Entry `yaml:"attributes"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := decode(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded attribute table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Parse loads a table from a YAML file.
func Parse(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader loads a table from any io.Reader.
func ParseReader(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing attribute table: %w", err)
	}
	if f.Version != TableFormatVersion {
		return nil, fmt.Errorf("unsupported table version %d (want %d)", f.Version, TableFormatVersion)
	}
	return NewTable(f.Attributes)
}

// NewTable validates entries and builds a table from them.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no attributes found in table")
	}

	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byKind:  make(map[Kind]int, len(entries)),
	}
	codes := make(map[uint32]Kind, len(entries))

	for i, e := range entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := t.byKind[e.Kind]; dup {
			return nil, fmt.Errorf("entry %d: duplicate kind %s", i, e.Kind)
		}
		if other, dup := codes[e.Code]; dup {
			return nil, fmt.Errorf("entry %d: code 0x%02X already used by %s", i, e.Code, other)
		}
		codes[e.Code] = e.Kind
		t.byKind[e.Kind] = len(t.entries)
		t.entries = append(t.entries, e)
	}

	return t, nil
}

// Lookup returns the entry for kind if it applies to the negotiated version.
func (t *Table) Lookup(kind Kind, version uint32) (Entry, error) {
	i, ok := t.byKind[kind]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	e := t.entries[i]
	if !e.Available(version) {
		return Entry{}, fmt.Errorf("%w: %s requires %s, session runs version %d",
			ErrVersionRange, kind, e.versionRange(), version)
	}
	return e, nil
}

// Entries returns the table entries in file order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Kinds returns the attribute kinds in file order.
func (t *Table) Kinds() []Kind {
	kinds := make([]Kind, len(t.entries))
	for i, e := range t.entries {
		kinds[i] = e.Kind
	}
	return kinds
}

func (e Entry) versionRange() string {
	switch {
	case e.MaxVersion == 0:
		return fmt.Sprintf("version >= %d", e.MinVersion)
	case e.MinVersion == 0:
		return fmt.Sprintf("version <= %d", e.MaxVersion)
	default:
		return fmt.Sprintf("version %d-%d", e.MinVersion, e.MaxVersion)
	}
}
