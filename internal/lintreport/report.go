// Package lintreport prints lint violations as colored diagnostic lines.
package lintreport

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/fenwick-labs/orgtree/internal/rules"
)

// Print writes one colored line per violation to w: the file, the rule
// name in red, and the message.
func Print(w io.Writer, path string, violations []rules.Violation) {
	rule := color.New(color.FgRed, color.Bold)
	loc := color.New(color.FgCyan)
	for _, v := range violations {
		fmt.Fprintf(w, "%s %s %s: %s (heading %q)\n",
			loc.Sprintf("%s:%d", path, v.Begin),
			rule.Sprint(v.Rule),
			color.YellowString("level %d", v.Level),
			v.Message, v.Heading)
	}
}
