package org

import (
	"regexp"
	"strings"
)

var headlineLineRegexp = regexp.MustCompile(`^(\*+)\s+(?:([A-Z][A-Z0-9]*)\s+)?(?:\[#([A-Z])\]\s+)?(.*?)\s*(:[\w:@]+:)?\s*$`)

// headlineLevel returns the number of leading stars followed by a space at
// the start of the line beginning at i, or 0 if the line is not a headline.
func headlineLevel(text []byte, i, limit int) int {
	stars := 0
	for i+stars < limit && text[i+stars] == '*' {
		stars++
	}
	if stars == 0 || i+stars >= limit || text[i+stars] != ' ' {
		return 0
	}
	return stars
}

// recognizeHeadline parses the headline on the single line starting at
// begin. It returns the payload and the offset just past the line
// (including its trailing newline, if any).
func recognizeHeadline(text []byte, begin, limit int) (HeadlinePayload, int, bool) {
	le := lineEnd(text, begin)
	if le > limit {
		le = limit
	}
	line := string(text[begin:le])
	line = strings.TrimRight(line, "\n")
	m := headlineLineRegexp.FindStringSubmatch(line)
	if m == nil || len(m[1]) == 0 {
		return HeadlinePayload{}, 0, false
	}
	h := HeadlinePayload{Level: len(m[1]), Keyword: m[2], Title: m[4]}
	if m[3] != "" {
		h.Priority = m[3][0]
	}
	if m[5] != "" {
		h.Tags = strings.Split(strings.Trim(m[5], ":"), ":")
	}
	return h, le, true
}

// walkHeadlines implements the headline walker (4.3): it splits a
// Document or Headline's contents into an optional leading Section and a
// sequence of child Headline subtrees.
func (p *Parser) walkHeadlines(id NodeID) {
	begin, end := p.arena[id].contentsBegin, p.arena[id].contentsEnd
	text := p.text
	cur := begin
	for cur < end {
		lvl := headlineLevel(text, cur, end)
		if lvl == 0 {
			next := findNextHeadlineLine(text, cur, end)
			p.emitSection(id, cur, next)
			cur = next
			continue
		}
		h, lineOff, ok := recognizeHeadline(text, cur, end)
		if !ok {
			next := findNextHeadlineLine(text, cur, end)
			p.emitSection(id, cur, next)
			cur = next
			continue
		}
		subtreeEnd := findSubtreeEnd(text, lineOff, end, lvl)
		hid := p.newNode(node{
			kind: KindHeadline, begin: cur, end: subtreeEnd,
			contentsBegin: lineOff, contentsEnd: subtreeEnd,
			payload: h,
		})
		p.appendChild(id, hid)
		cur = subtreeEnd
	}
}

// emitSection adds a Section child spanning [begin, limit), trimming
// leading/trailing blank lines from its contents region. A whitespace-only
// region yields no node.
func (p *Parser) emitSection(parent NodeID, begin, limit int) {
	if begin >= limit {
		return
	}
	ci, cj := skipEmptyLines(p.text, begin, limit)
	if ci >= cj {
		return
	}
	sid := p.newNode(node{kind: KindSection, begin: begin, end: limit, contentsBegin: ci, contentsEnd: cj})
	p.appendChild(parent, sid)
}

// findNextHeadlineLine scans forward from i (not itself a headline start)
// looking for the next line that is a headline at any level.
func findNextHeadlineLine(text []byte, i, limit int) int {
	for i < limit {
		if headlineLevel(text, i, limit) > 0 {
			return i
		}
		i = lineEnd(text, i)
		if i == 0 {
			break
		}
	}
	return limit
}

// findSubtreeEnd scans forward from i looking for the next line whose
// headline level is <= lvl, which terminates the current headline's
// subtree.
func findSubtreeEnd(text []byte, i, limit, lvl int) int {
	for i < limit {
		if l := headlineLevel(text, i, limit); l > 0 && l <= lvl {
			return i
		}
		next := lineEnd(text, i)
		if next <= i {
			break
		}
		i = next
	}
	return limit
}
