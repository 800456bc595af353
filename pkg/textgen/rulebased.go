package textgen

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
)

var (
	batchRe      = regexp.MustCompile(`batch(?:\s+size)?(?:\s+of)?\s*[:=]?\s*(\d+(?:\.\d+)?)`)
	throughputRe = regexp.MustCompile(`throughput(?:\s+of)?\s*[:=]?\s*(\d+(?:\.\d+)?)`)
	priorityRe   = regexp.MustCompile(`priorit\w*\s+(material|personnel)`)
)

// RuleBased is a deterministic Generator that spots reference-table room
// names in the description. It needs no network and is used in tests and
// offline runs.
type RuleBased struct {
	keys  []string
	names map[string]string
}

// NewRuleBased builds a generator over the names and aliases of table.
func NewRuleBased(table *reference.Table) *RuleBased {
	names := table.Names()
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	// Longest first so "raw material storage" claims its words before
	// "storage" can.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &RuleBased{keys: keys, names: names}
}

// ExtractRooms returns the reference rooms mentioned in description, in
// order of first mention, plus any capacity and style hints.
func (g *RuleBased) ExtractRooms(ctx context.Context, description string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := " " + words(description) + " "

	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	seen := make(map[string]bool)
	claimed := make([]bool, len(text))
	for _, key := range g.keys {
		needle := " " + key + " "
		from := 0
		for {
			i := strings.Index(text[from:], needle)
			if i < 0 {
				break
			}
			start := from + i
			from = start + 1
			if claimed[start+1] {
				continue
			}
			for j := start + 1; j < start+len(needle)-1; j++ {
				claimed[j] = true
			}
			name := g.names[key]
			if !seen[name] {
				seen[name] = true
				hits = append(hits, hit{pos: start, name: name})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	ex := &Extraction{Rooms: make([]string, 0, len(hits))}
	for _, h := range hits {
		ex.Rooms = append(ex.Rooms, h.name)
	}

	lower := strings.ToLower(description)
	ex.BatchSize = number(batchRe, lower)
	ex.Throughput = number(throughputRe, lower)
	for _, style := range []string{"compact", "spacious", "linear"} {
		if strings.Contains(text, " "+style+" ") {
			ex.LayoutStyle = style
			break
		}
	}
	if m := priorityRe.FindStringSubmatch(lower); m != nil {
		ex.PrioritizeFlow = m[1]
	}
	return ex, nil
}

// Rationale writes a fixed-template summary of the layout.
func (g *RuleBased) Rationale(ctx context.Context, rooms []RoomSummary, description string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var total float64
	classes := make(map[string]int)
	for _, r := range rooms {
		total += r.Area
		if r.Class != "" {
			classes[r.Class]++
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The layout arranges %d rooms over %.0f m².", len(rooms), total)
	if len(classes) > 0 {
		grades := make([]string, 0, len(classes))
		for c := range classes {
			grades = append(grades, c)
		}
		sort.Strings(grades)
		fmt.Fprintf(&b, " Rooms are grouped by cleanroom grade (%s) with airlocks where grades change sharply.", strings.Join(grades, ", "))
	}
	b.WriteString(" Related rooms are placed close together to keep material and personnel routes short, and rooms that must not be adjacent are kept apart.")
	return b.String(), nil
}

func words(s string) string {
	f := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	return strings.Join(f, " ")
}

func number(re *regexp.Regexp, s string) *float64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
