// Package reference holds the room-size reference table and resolves room
// names against it.
package reference

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
)

//go:embed rooms.yaml
var defaultRooms []byte

// Scaling basis values.
const (
	BasisNone       = ""
	BasisBatchSize  = "batch_size"
	BasisThroughput = "throughput"
)

// ScalingRule scales a room's area with a capacity hint.
type ScalingRule struct {
	Basis     string  `yaml:"basis" json:"basis"`
	Reference float64 `yaml:"reference" json:"reference"`
	MinRatio  float64 `yaml:"min_ratio" json:"min_ratio"`
	MaxRatio  float64 `yaml:"max_ratio" json:"max_ratio"`
}

// Record is one row of the reference table.
type Record struct {
	Name     string           `yaml:"name" json:"name"`
	Aliases  []string         `yaml:"aliases" json:"aliases,omitempty"`
	Category string           `yaml:"category" json:"category"`
	Class    *cleanroom.Class `yaml:"class" json:"class,omitempty"`
	Width    float64          `yaml:"width" json:"width"`
	Height   float64          `yaml:"height" json:"height"`
	Shape    string           `yaml:"shape" json:"shape"`
	Scaling  ScalingRule      `yaml:"scaling" json:"scaling"`
}

// Area returns the base area in square metres.
func (r Record) Area() float64 {
	return r.Width * r.Height
}

// Table is an immutable, name-indexed set of records.
type Table struct {
	records []Record
	index   map[string]int
}

type tableFile struct {
	Rooms []Record `yaml:"rooms"`
}

// Default returns the embedded reference table.
func Default() *Table {
	t, err := Parse(defaultRooms)
	if err != nil {
		panic(fmt.Sprintf("embedded reference table: %v", err))
	}
	return t
}

// Load reads a reference table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML reference table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing reference table YAML: %w", err)
	}
	return New(f.Rooms)
}

// New builds a table from records, rejecting duplicates and impossible
// dimensions.
func New(records []Record) (*Table, error) {
	t := &Table{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)*2),
	}
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("record %d: empty name", i)
		}
		if r.Width <= 0 || r.Height <= 0 {
			return nil, fmt.Errorf("record %q: width and height must be > 0", r.Name)
		}
		if r.Class != nil && !r.Class.Valid() {
			return nil, fmt.Errorf("record %q: unknown cleanroom class %q", r.Name, *r.Class)
		}
		switch r.Scaling.Basis {
		case BasisNone, BasisBatchSize, BasisThroughput:
		default:
			return nil, fmt.Errorf("record %q: unknown scaling basis %q", r.Name, r.Scaling.Basis)
		}
		pos := len(t.records)
		for _, key := range append([]string{r.Name}, r.Aliases...) {
			k := normalize(key)
			if prev, dup := t.index[k]; dup {
				return nil, fmt.Errorf("record %q: key %q already used by %q", r.Name, key, t.records[prev].Name)
			}
			t.index[k] = pos
		}
		t.records = append(t.records, r)
	}
	return t, nil
}

// Records returns a copy of all records in table order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Lookup finds the record for a room-type name. Exact (case-insensitive)
// matches on name or alias win. Otherwise a key appearing as whole words in
// the query is preferred, longest key first; failing that, a key containing
// the query, shortest key first.
func (t *Table) Lookup(name string) (Record, bool) {
	q := normalize(name)
	if q == "" {
		return Record{}, false
	}
	if i, ok := t.index[q]; ok {
		return t.records[i], true
	}

	bestInQuery, bestInQueryLen := -1, 0
	bestContaining, bestContainingLen := -1, 0
	padded := " " + q + " "
	for key, i := range t.index {
		switch {
		case strings.Contains(padded, " "+key+" "):
			if len(key) > bestInQueryLen || (len(key) == bestInQueryLen && i < bestInQuery) {
				bestInQuery, bestInQueryLen = i, len(key)
			}
		case strings.Contains(key, q):
			if bestContaining < 0 || len(key) < bestContainingLen ||
				(len(key) == bestContainingLen && i < bestContaining) {
				bestContaining, bestContainingLen = i, len(key)
			}
		}
	}
	if bestInQuery >= 0 {
		return t.records[bestInQuery], true
	}
	if bestContaining >= 0 {
		return t.records[bestContaining], true
	}
	return Record{}, false
}

// Names returns every record name and alias, lowercased. Used by the
// rule-based extractor to spot room types in free text.
func (t *Table) Names() map[string]string {
	out := make(map[string]string, len(t.index))
	for k, i := range t.index {
		out[k] = t.records[i].Name
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
