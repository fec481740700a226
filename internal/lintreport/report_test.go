package lintreport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fenwick-labs/orgtree/internal/rules"
)

func TestPrintFormatsOneLinePerViolation(t *testing.T) {
	var buf bytes.Buffer
	violations := []rules.Violation{
		{Rule: "has-tag", Message: "heading must carry a tag", Heading: "Todo item", Level: 1, Begin: 0, End: 12},
		{Rule: "has-tag", Message: "heading must carry a tag", Heading: "Another item", Level: 1, Begin: 12, End: 30},
	}

	Print(&buf, "notes.org", violations)

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines of output, got %d: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "notes.org:0") {
		t.Errorf("line 0 missing path:offset: %q", lines[0])
	}
	if !strings.Contains(lines[0], "has-tag") {
		t.Errorf("line 0 missing rule name: %q", lines[0])
	}
	if !strings.Contains(lines[0], "Todo item") {
		t.Errorf("line 0 missing heading: %q", lines[0])
	}
}

func TestPrintEmptyViolationsProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, "notes.org", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for zero violations, got %q", buf.String())
	}
}
