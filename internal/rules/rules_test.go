package rules

import (
	"os"
	"testing"

	"github.com/fenwick-labs/orgtree/org"
)

func TestCheckFlagsFailingRule(t *testing.T) {
	text := "* Todo item\n** Sub heading without a tag\nBody.\n"
	p := org.New().Silent().Parse([]byte(text), "test.org")

	set := &Set{Rules: []Rule{
		{Name: "has-tag", Expr: `hasTag("work")`, Message: "heading must carry the work tag"},
	}}

	violations, err := set.Check(p)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations (one per headline), got %d: %+v", len(violations), violations)
	}
	for _, v := range violations {
		if v.Rule != "has-tag" {
			t.Errorf("violation rule = %q, want has-tag", v.Rule)
		}
	}
}

func TestCheckPassingRuleProducesNoViolations(t *testing.T) {
	text := "* Heading\nBody.\n"
	p := org.New().Silent().Parse([]byte(text), "test.org")

	set := &Set{Rules: []Rule{
		{Name: "always-true", Expr: `level > 0`, Message: "unreachable"},
	}}

	violations, err := set.Check(p)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestCheckInvalidExpressionErrors(t *testing.T) {
	p := org.New().Silent().Parse([]byte("* Heading\n"), "test.org")
	set := &Set{Rules: []Rule{{Name: "broken", Expr: "(((", Message: "bad"}}}
	if _, err := set.Check(p); err == nil {
		t.Fatal("expected an error compiling a malformed rule expression")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/rules.yaml"
	content := []byte("rules:\n  - name: no-empty-heading\n    expr: \"heading != ''\"\n    message: heading must not be empty\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	set, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if len(set.Rules) != 1 || set.Rules[0].Name != "no-empty-heading" {
		t.Fatalf("unexpected rule set: %+v", set.Rules)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/rules.toml"
	content := []byte("[[rules]]\nname = \"no-empty-heading\"\nexpr = \"heading != ''\"\nmessage = \"heading must not be empty\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	set, err := LoadTOML(path)
	if err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if len(set.Rules) != 1 || set.Rules[0].Name != "no-empty-heading" {
		t.Fatalf("unexpected rule set: %+v", set.Rules)
	}
}
