// Package rules evaluates user-supplied structural rules, expressed as
// expr-lang expressions, against headline nodes of a parsed document.
package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/fenwick-labs/orgtree/org"
)

// Rule is one structural check: an expr-lang boolean expression evaluated
// against a headline environment. A headline that evaluates to false
// produces a Violation.
type Rule struct {
	Name    string `yaml:"name" toml:"name"`
	Expr    string `yaml:"expr" toml:"expr"`
	Message string `yaml:"message" toml:"message"`
}

// Set is a collection of rules, as loaded from a .orglint.yaml or
// .orglint.toml file.
type Set struct {
	Rules []Rule `yaml:"rules" toml:"rules"`
}

// LoadYAML reads a YAML rule-set file.
func LoadYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// LoadTOML reads a TOML rule-set file, the alternate format orglint loads
// when --toml is given alongside --config.
func LoadTOML(path string) (*Set, error) {
	var s Set
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// Violation is one rule failure against one headline.
type Violation struct {
	Rule    string
	Message string
	Heading string
	Level   int
	Begin   int
	End     int
}

// Check evaluates every rule in s against every headline in p, returning
// one Violation per failing (rule, headline) pair.
func (s *Set) Check(p *org.Parser) ([]Violation, error) {
	programs := make([]*compiledRule, len(s.Rules))
	for i, r := range s.Rules {
		prog, err := expr.Compile(r.Expr, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		programs[i] = &compiledRule{rule: r, program: prog}
	}

	var violations []Violation
	it := p.Iter()
	for it.Next() {
		n := it.Node()
		if n.Kind() != org.KindHeadline {
			continue
		}
		hp := n.Payload().(org.HeadlinePayload)
		env := map[string]interface{}{
			"heading": hp.Title,
			"level":   hp.Level,
			"keyword": hp.Keyword,
			"tags":    hp.Tags,
			"lower":   strings.ToLower,
			"upper":   strings.ToUpper,
			"hasTag": func(tag string) bool {
				for _, t := range hp.Tags {
					if t == tag {
						return true
					}
				}
				return false
			},
		}
		for _, v := range programs {
			result, err := expr.Run(v.program, env)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", v.rule.Name, err)
			}
			if ok, _ := result.(bool); !ok {
				violations = append(violations, Violation{
					Rule: v.rule.Name, Message: v.rule.Message,
					Heading: hp.Title, Level: hp.Level,
					Begin: n.Begin(), End: n.End(),
				})
			}
		}
	}
	return violations, nil
}

type compiledRule struct {
	rule    Rule
	program *vm.Program
}
