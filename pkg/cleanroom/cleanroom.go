// Package cleanroom models GMP cleanliness grades.
package cleanroom

import (
	"fmt"
	"strings"
)

// Class is a GMP cleanroom grade. The zero value is not a valid class;
// optional classes are carried as *Class.
type Class string

const (
	ClassA   Class = "A"
	ClassB   Class = "B"
	ClassC   Class = "C"
	ClassD   Class = "D"
	ClassCNC Class = "CNC"
)

// AirlockGap is the level difference at or above which two connected rooms
// need a buffer room between them.
const AirlockGap = 2

var levels = map[Class]int{
	ClassA:   4,
	ClassB:   3,
	ClassC:   2,
	ClassD:   1,
	ClassCNC: 0,
}

// Level returns the ordinal of the class, A=4 down to CNC=0.
func (c Class) Level() int {
	return levels[c]
}

// Valid reports whether c is a known grade.
func (c Class) Valid() bool {
	_, ok := levels[c]
	return ok
}

// Parse accepts "A".."D", "CNC" and the common spellings "Grade B",
// "class c" and "non-classified".
func Parse(s string) (Class, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.TrimPrefix(norm, "GRADE ")
	norm = strings.TrimPrefix(norm, "CLASS ")
	switch norm {
	case "A", "B", "C", "D", "CNC":
		return Class(norm), nil
	case "NON-CLASSIFIED", "NONCLASSIFIED", "UNCLASSIFIED", "NC":
		return ClassCNC, nil
	}
	return "", fmt.Errorf("unknown cleanroom class %q", s)
}

// Ptr returns a pointer to c, for optional fields.
func Ptr(c Class) *Class {
	return &c
}

// Gap returns the absolute level difference. ok is false when either class
// is unset.
func Gap(a, b *Class) (gap int, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	d := a.Level() - b.Level()
	if d < 0 {
		d = -d
	}
	return d, true
}

// NeedsAirlock reports whether moving between a and b requires a buffer
// room: a gap of at least threshold levels, or two high grades (B and
// above) that differ.
func NeedsAirlock(a, b *Class, threshold int) bool {
	gap, ok := Gap(a, b)
	if !ok {
		return false
	}
	if gap >= threshold {
		return true
	}
	return a.Level() >= 3 && b.Level() >= 3 && gap > 0
}

// Cleaner returns the cleaner of the two classes. Either may be nil.
func Cleaner(a, b *Class) *Class {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Level() >= b.Level():
		return a
	default:
		return b
	}
}

// Environment is the default environmental envelope attached to a room of
// a given grade.
type Environment struct {
	TemperatureC [2]float64 `json:"temperatureC" yaml:"temperature_c"`
	HumidityPct  [2]float64 `json:"humidityPct" yaml:"humidity_pct"`
	PressurePa   float64    `json:"pressurePa" yaml:"pressure_pa"`
}

// DefaultEnvironment returns the envelope for c. Pressure differentials
// step up with the grade so air flows from cleaner to dirtier rooms.
func DefaultEnvironment(c *Class) Environment {
	env := Environment{
		TemperatureC: [2]float64{18, 25},
		HumidityPct:  [2]float64{30, 65},
	}
	if c == nil {
		return env
	}
	switch *c {
	case ClassA:
		env.PressurePa = 45
	case ClassB:
		env.PressurePa = 30
	case ClassC:
		env.PressurePa = 15
	case ClassD:
		env.PressurePa = 10
	}
	return env
}
