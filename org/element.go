package org

import (
	"regexp"
	"strings"
)

var clockLineRegexp = regexp.MustCompile(`(?i)^[ \t]*CLOCK:.*$`)
var ruleLineRegexp = regexp.MustCompile(`^[ \t]*-{5,}[ \t]*$`)
var drawerBeginRegexp = regexp.MustCompile(`^[ \t]*:(\S+):[ \t]*$`)
var drawerEndRegexp = regexp.MustCompile(`(?i)^[ \t]*:END:[ \t]*$`)
var blockBeginRegexp = regexp.MustCompile(`(?i)^[ \t]*#\+BEGIN_(\S+)[ \t]*(.*)$`)
var dynBlockBeginRegexp = regexp.MustCompile(`(?i)^[ \t]*#\+BEGIN:[ \t]*(\S+)[ \t]*(.*)$`)
var dynBlockEndRegexp = regexp.MustCompile(`(?i)^[ \t]*#\+END:[ \t]*$`)
var keywordLineRegexp = regexp.MustCompile(`^[ \t]*#\+(\S+):[ \t]*(.*)$`)
var fixedWidthLineRegexp = regexp.MustCompile(`^[ \t]*:( .*|)$`)
var commentLineRegexp = regexp.MustCompile(`^[ \t]*#( .*|)$`)
var blockEndRegexp = regexp.MustCompile(`(?i)^[ \t]*#\+END_(\S+)[ \t]*$`)

var rawBlockNames = map[string]bool{"SRC": true, "EXAMPLE": true, "EXPORT": true, "COMMENT": true}

// walkElements implements the element dispatcher and block walker (4.4): it
// splits a Section, Block, DynBlock, Drawer, FnDef or ListItem's contents
// into a sequence of element children.
func (p *Parser) walkElements(id NodeID) {
	begin, end := p.arena[id].contentsBegin, p.arena[id].contentsEnd
	text := p.text
	cur := begin
	for cur < end {
		if n, consumed, ok := p.tryDirectElement(text, cur, end); ok {
			p.appendChild(id, p.newNode(n))
			cur = n.begin + consumed
			continue
		}
		i := cur
		for i < end {
			le := lineEndBounded(text, i, end)
			if isBlankLine(text, i, contentEnd(text, i, le)) {
				break
			}
			if i > cur {
				if _, _, ok := p.tryDirectElement(text, i, end); ok {
					break
				}
			}
			i = le
		}
		p.emitParagraph(id, cur, i)
		cur = skipBlankLinesForward(text, i, end)
	}
}

func lineEndBounded(text []byte, i, limit int) int {
	le := lineEnd(text, i)
	if le > limit {
		le = limit
	}
	return le
}

func skipBlankLinesForward(text []byte, i, end int) int {
	for i < end {
		le := lineEndBounded(text, i, end)
		if !isBlankLine(text, i, contentEnd(text, i, le)) {
			break
		}
		i = le
	}
	return i
}

func (p *Parser) emitParagraph(parent NodeID, begin, end int) {
	if begin >= end {
		return
	}
	contentsEnd := end
	if contentsEnd > begin && p.text[contentsEnd-1] == '\n' {
		contentsEnd--
	}
	pid := p.newNode(node{kind: KindParagraph, begin: begin, end: end, contentsBegin: begin, contentsEnd: contentsEnd})
	p.appendChild(parent, pid)
}

// tryDirectElement tries, in priority order, every element recognizer at
// begin. It returns the constructed node (begin/end/contentsBegin/
// contentsEnd/payload/kind set; parent/sibling links left zero) and the
// total number of bytes consumed.
func (p *Parser) tryDirectElement(text []byte, begin, end int) (node, int, bool) {
	if n, c, ok := recognizeFootnoteDef(text, begin, end); ok {
		return n, c, true
	}
	if n, c, ok := recognizeList(text, begin, end); ok {
		return n, c, true
	}
	le := lineEndBounded(text, begin, end)
	line := string(text[begin:contentEnd(text, begin, le)])

	if clockLineRegexp.MatchString(line) {
		n := node{kind: KindClock, begin: begin, end: le, payload: ClockPayload{Raw: strings.TrimSpace(line)}}
		return n, le - begin, true
	}
	if ruleLineRegexp.MatchString(line) {
		n := node{kind: KindRule, begin: begin, end: le}
		return n, le - begin, true
	}
	if m := drawerBeginRegexp.FindStringSubmatch(line); m != nil && !strings.EqualFold(m[1], "END") {
		if n, c, ok := recognizeDrawer(text, begin, end, le, m[1]); ok {
			return n, c, true
		}
	}
	if m := blockBeginRegexp.FindStringSubmatch(line); m != nil {
		if n, c, ok := recognizeBlock(text, begin, end, le, m[1], m[2]); ok {
			return n, c, true
		}
	}
	if m := dynBlockBeginRegexp.FindStringSubmatch(line); m != nil {
		if n, c, ok := recognizeDynBlock(text, begin, end, le, m[1], m[2]); ok {
			return n, c, true
		}
	}
	if n, c, ok := p.recognizeLatexEnvironment(text, begin, end); ok {
		return n, c, true
	}
	if m := keywordLineRegexp.FindStringSubmatch(line); m != nil {
		key, value := strings.ToUpper(m[1]), m[2]
		if key == "CALL" {
			n := node{kind: KindBabelCall, begin: begin, end: le, payload: BabelCallPayload{Value: value}}
			return n, le - begin, true
		}
		n := node{kind: KindKeyword, begin: begin, end: le, payload: KeywordPayload{Key: key, Value: value}}
		return n, le - begin, true
	}
	if fixedWidthLineRegexp.MatchString(line) {
		return recognizeLineRun(text, begin, end, KindFixedWidth, fixedWidthLineRegexp, FixedWidthPayload{})
	}
	if commentLineRegexp.MatchString(line) {
		return recognizeLineRun(text, begin, end, KindComment, commentLineRegexp, CommentPayload{})
	}
	return node{}, 0, false
}

// recognizeLineRun folds consecutive lines matching re into a single
// element, the shared shape used by fixed-width and comment runs.
func recognizeLineRun(text []byte, begin, end int, kind Kind, re *regexp.Regexp, payload interface{}) (node, int, bool) {
	i := begin
	for i < end {
		le := lineEndBounded(text, i, end)
		if !re.MatchString(string(text[i:contentEnd(text, i, le)])) {
			break
		}
		i = le
	}
	if i == begin {
		return node{}, 0, false
	}
	n := node{kind: kind, begin: begin, end: i, contentsBegin: begin, contentsEnd: i, payload: payload}
	return n, i - begin, true
}

func recognizeDrawer(text []byte, begin, end, lineOff int, name string) (node, int, bool) {
	i := lineOff
	for i < end {
		le := lineEndBounded(text, i, end)
		if drawerEndRegexp.MatchString(string(text[i:contentEnd(text, i, le)])) {
			n := node{kind: KindDrawer, begin: begin, end: le, contentsBegin: lineOff, contentsEnd: i, payload: DrawerPayload{Name: name}}
			return n, le - begin, true
		}
		i = le
	}
	return node{}, 0, false
}

func recognizeBlock(text []byte, begin, end, lineOff int, name, params string) (node, int, bool) {
	i := lineOff
	for i < end {
		le := lineEndBounded(text, i, end)
		if m := blockEndRegexp.FindStringSubmatch(string(text[i:contentEnd(text, i, le)])); m != nil && strings.EqualFold(m[1], name) {
			raw := rawBlockNames[strings.ToUpper(name)]
			n := node{
				kind: KindBlock, begin: begin, end: le,
				contentsBegin: lineOff, contentsEnd: i,
				payload: BlockPayload{Name: name, Parameters: strings.Fields(params), Raw: raw},
			}
			return n, le - begin, true
		}
		i = le
	}
	return node{}, 0, false
}

func recognizeDynBlock(text []byte, begin, end, lineOff int, name, params string) (node, int, bool) {
	i := lineOff
	for i < end {
		le := lineEndBounded(text, i, end)
		if dynBlockEndRegexp.MatchString(string(text[i:contentEnd(text, i, le)])) {
			n := node{
				kind: KindDynBlock, begin: begin, end: le,
				contentsBegin: lineOff, contentsEnd: i,
				payload: DynBlockPayload{Name: name, Parameters: strings.Fields(params)},
			}
			return n, le - begin, true
		}
		i = le
	}
	return node{}, 0, false
}
