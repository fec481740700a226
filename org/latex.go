package org

import (
	"github.com/dlclark/regexp2"
)

// latexEnvironmentRegexp matches a LaTeX environment whose closing tag
// names the same environment as its opening tag. Go's stdlib regexp (RE2)
// cannot express the \1 backreference this needs, so this is the one
// recognizer in the core that reaches for regexp2 instead. The m flag
// keeps ^/$ anchored per line so the match can end well before the end
// of the surrounding region; the s flag lets .*? cross the lines in
// between.
var latexEnvironmentRegexp = regexp2.MustCompile(`(?sm)^[ \t]*\\begin\{(\w+)\}.*?\\end\{\1\}[ \t]*$`, regexp2.None)

// recognizeLatexEnvironment matches a \begin{name}...\end{name} block,
// folding it (and any following unrelated lines up to the matching
// \end) into a single LatexEnvironment element rather than falling
// through to paragraph text.
func (p *Parser) recognizeLatexEnvironment(text []byte, begin, end int) (node, int, bool) {
	m, err := latexEnvironmentRegexp.FindStringMatch(string(text[begin:end]))
	if err != nil || m == nil || m.Index != 0 {
		return node{}, 0, false
	}
	name := m.GroupByNumber(1).String()
	// regexp2 reports rune positions; the matched text's length in bytes
	// gives the byte offset (m.Index is 0 here).
	matchEnd := begin + len(m.String())
	contentsBegin := lineEndBounded(text, begin, end)
	if contentsBegin > matchEnd {
		contentsBegin = matchEnd
	}
	n := node{
		kind: KindLatexEnvironment, begin: begin, end: matchEnd,
		contentsBegin: contentsBegin, contentsEnd: matchEnd,
		payload: LatexEnvironmentPayload{Name: name},
	}
	return n, matchEnd - begin, true
}
