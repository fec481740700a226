package org

import (
	"regexp"
	"strings"
)

var unorderedBulletLineRegexp = regexp.MustCompile(`^(\s*)([+*-])(\s+(.*)|$)`)
var orderedBulletLineRegexp = regexp.MustCompile(`^(\s*)([0-9]+|[a-zA-Z])([.)])(\s+(.*)|$)`)
var descriptiveListItemRegexp = regexp.MustCompile(`\s::(\s|$)`)
var listItemValueRegexp = regexp.MustCompile(`^\[@(\d+)\][ \t]*`)
var listItemStatusRegexp = regexp.MustCompile(`^\[( |X|-)\][ \t]*`)

type bulletLine struct {
	indent        int
	bullet        string
	content       string
	contentOffset int // line-relative offset of content's first byte
	isOrd         bool
}

func matchBulletLine(line string) (bulletLine, bool) {
	if loc := unorderedBulletLineRegexp.FindStringSubmatchIndex(line); loc != nil {
		m := expand(line, loc)
		bl := bulletLine{indent: len(m[1]), bullet: m[2], content: m[4]}
		bl.contentOffset = len(line)
		if loc[8] >= 0 {
			bl.contentOffset = loc[8]
		}
		return bl, true
	}
	if loc := orderedBulletLineRegexp.FindStringSubmatchIndex(line); loc != nil {
		m := expand(line, loc)
		bl := bulletLine{indent: len(m[1]), bullet: m[2] + m[3], content: m[5], isOrd: true}
		bl.contentOffset = len(line)
		if loc[10] >= 0 {
			bl.contentOffset = loc[10]
		}
		return bl, true
	}
	return bulletLine{}, false
}

func expand(line string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] < 0 {
			continue
		}
		out[i] = line[loc[2*i]:loc[2*i+1]]
	}
	return out
}

// recognizeList detects a run of bullet lines sharing the indent of the
// first bullet at begin (4.6). It returns the List node with
// contentsBegin/contentsEnd spanning the item run (excluding trailing
// blank lines) while consumed additionally swallows those trailing blanks.
func recognizeList(text []byte, begin, end int) (node, int, bool) {
	le := lineEndBounded(text, begin, end)
	first, ok := matchBulletLine(string(text[begin:le]))
	if !ok {
		return node{}, 0, false
	}
	indent := first.indent
	mainKind := UnorderedList
	if first.isOrd {
		mainKind = OrderedList
	}
	kind := mainKind
	if descriptiveListItemRegexp.MatchString(first.content) {
		kind = DescriptiveList
	}

	i := begin
	limit := begin
	for i < end {
		le := lineEndBounded(text, i, end)
		line := string(text[i:le])
		if isBlankLine(text, i, contentEnd(text, i, le)) {
			break
		}
		bl, ok := matchBulletLine(line)
		if ok && bl.indent == indent {
			lineIsOrd := bl.isOrd
			if (mainKind == OrderedList) != lineIsOrd {
				break
			}
		} else if bl.indent > indent || !ok {
			// continuation line belonging to the previous item
		} else {
			break
		}
		limit = le
		i = le
	}
	consumed := limit
	for consumed < end {
		ce := lineEndBounded(text, consumed, end)
		if !isBlankLine(text, consumed, contentEnd(text, consumed, ce)) {
			break
		}
		consumed = ce
	}
	n := node{
		kind: KindList, begin: begin, end: consumed,
		contentsBegin: begin, contentsEnd: limit,
		payload: ListPayload{Kind: kind, Indent: indent},
	}
	return n, consumed - begin, true
}

// walkListItems implements the list-item walker (4.7): it splits a List's
// contents into ListItem children sharing the list's common indent.
func (p *Parser) walkListItems(id NodeID) {
	text := p.text
	begin, end := p.arena[id].contentsBegin, p.arena[id].contentsEnd
	listPayload := p.arena[id].payload.(ListPayload)
	cur := begin
	for cur < end {
		le := lineEndBounded(text, cur, end)
		bl, ok := matchBulletLine(string(text[cur:le]))
		if !ok {
			break
		}
		itemEnd := le
		for itemEnd < end {
			nle := lineEndBounded(text, itemEnd, end)
			line := string(text[itemEnd:nle])
			if ib, ok := matchBulletLine(line); ok && ib.indent <= bl.indent {
				break
			}
			if isBlankLine(text, itemEnd, contentEnd(text, itemEnd, nle)) {
				after := nle
				if after < end {
					if ab, ok := matchBulletLine(string(text[after:lineEndBounded(text, after, end)])); ok && ab.indent <= bl.indent {
						break
					}
				}
			}
			itemEnd = nle
		}
		off := cur + bl.contentOffset
		content := bl.content
		status, value, term := "", "", ""
		if listPayload.Kind == OrderedList {
			if m := listItemValueRegexp.FindStringSubmatch(content); m != nil {
				value = m[1]
				off += len(m[0])
				content = content[len(m[0]):]
			}
		}
		if m := listItemStatusRegexp.FindStringSubmatch(content); m != nil {
			status = m[1]
			off += len(m[0])
			content = content[len(m[0]):]
		}
		if listPayload.Kind == DescriptiveList {
			if m := descriptiveListItemRegexp.FindStringIndex(content); m != nil {
				term = strings.TrimSpace(content[:m[0]])
				off += m[1]
			}
		}
		iid := p.newNode(node{
			kind: KindListItem, begin: cur, end: itemEnd,
			contentsBegin: off, contentsEnd: itemEnd,
			payload: ListItemPayload{Bullet: bl.bullet, Status: status, Value: value, Term: term},
		})
		p.appendChild(id, iid)
		cur = itemEnd
	}
}
