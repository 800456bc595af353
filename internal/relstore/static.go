// Package relstore provides relationship stores: an in-memory rule set, SQL
// backed graph tables and a read-through cache.
package relstore

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
)

//go:embed rules.yaml
var defaultRules []byte

type ruleFile struct {
	Rules []relations.Rule `yaml:"rules"`
}

// DefaultRules returns the embedded GMP rule set.
func DefaultRules() []relations.Rule {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rule set: %v", err))
	}
	return rules
}

// LoadRules reads a YAML rule set.
func LoadRules(path string) ([]relations.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule set: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and checks a YAML rule set.
func ParseRules(data []byte) ([]relations.Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rule set YAML: %w", err)
	}
	for i, r := range f.Rules {
		if strings.TrimSpace(r.FromType) == "" || strings.TrimSpace(r.ToType) == "" {
			return nil, fmt.Errorf("rule %d: from and to are required", i)
		}
		if r.Type == "" {
			return nil, fmt.Errorf("rule %d (%s -> %s): type is required", i, r.FromType, r.ToType)
		}
	}
	return f.Rules, nil
}

// StaticStore serves rules from memory.
type StaticStore struct {
	rules map[[2]string][]relations.Rule
	count int
}

// NewStaticStore indexes rules by normalized directed pair.
func NewStaticStore(rules []relations.Rule) *StaticStore {
	s := &StaticStore{rules: make(map[[2]string][]relations.Rule), count: len(rules)}
	for _, r := range rules {
		k := [2]string{relations.NormalizeType(r.FromType), relations.NormalizeType(r.ToType)}
		s.rules[k] = append(s.rules[k], r)
	}
	return s
}

// Query returns the rules stored for fromType -> toType.
func (s *StaticStore) Query(ctx context.Context, fromType, toType string) ([]relations.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rules := s.rules[[2]string{relations.NormalizeType(fromType), relations.NormalizeType(toType)}]
	out := make([]relations.Rule, len(rules))
	copy(out, rules)
	return out, nil
}

// Len returns the number of rules held.
func (s *StaticStore) Len() int {
	return s.count
}
