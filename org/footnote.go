package org

import "regexp"

var footnoteDefLineRegexp = regexp.MustCompile(`^\[fn:([\w-]+)\][ \t]*(.*)$`)

// recognizeFootnoteDef matches a footnote definition ("[fn:label] ...") that
// must start at column zero of the region handed to the element dispatcher;
// an indented "  [fn:x] ..." line is never recognized here and instead folds
// into the surrounding paragraph, since the dispatcher only calls this at
// the start of a line within a Section/Block/ListItem contents region.
func recognizeFootnoteDef(text []byte, begin, end int) (node, int, bool) {
	le := lineEndBounded(text, begin, end)
	m := footnoteDefLineRegexp.FindStringSubmatch(string(text[begin:contentEnd(text, begin, le)]))
	if m == nil {
		return node{}, 0, false
	}
	name := m[1]
	i := le
	for i < end {
		if headlineLevel(text, i, end) > 0 {
			break
		}
		nextLe := lineEndBounded(text, i, end)
		if footnoteDefLineRegexp.MatchString(string(text[i:contentEnd(text, i, nextLe)])) {
			break
		}
		if isBlankLine(text, i, contentEnd(text, i, nextLe)) {
			// a second consecutive blank line ends the definition
			secondLe := lineEndBounded(text, nextLe, end)
			if nextLe >= end || isBlankLine(text, nextLe, contentEnd(text, nextLe, secondLe)) {
				break
			}
		}
		i = nextLe
	}
	contentsBegin := begin + len(m[0]) - len(m[2])
	n := node{
		kind: KindFnDef, begin: begin, end: i,
		contentsBegin: contentsBegin, contentsEnd: i,
		payload: FnDefPayload{Name: name},
	}
	return n, i - begin, true
}
