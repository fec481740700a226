package org

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var timestampRegexp = regexp.MustCompile(`^<(\d{4}-\d{2}-\d{2})( [A-Za-z]+)?( \d{2}:\d{2})?( \+\d+[dwmy])?>`)
var footnoteRefRegexp = regexp.MustCompile(`^\[fn:([\w-]*?)(:(.*?))?\]`)
var cookieRegexp = regexp.MustCompile(`^\[(\d+/\d+|\d+%)\]`)
var macroRegexp = regexp.MustCompile(`^\{\{\{(.*?)\((.*?)\)\}\}\}`)
var snippetRegexp = regexp.MustCompile(`^@@(\w+):(.*?)@@`)
var targetRegexp = regexp.MustCompile(`^<<([^<>]+)>>`)
var radioTargetRegexp = regexp.MustCompile(`^<<<([^<>]+)>>>`)
var inlineSrcRegexp = regexp.MustCompile(`^src_(\w+)(\[([^\]]*)\])?\{([^}]*)\}`)
var inlineCallRegexp = regexp.MustCompile(`^call_(\w+)(\[[^\]]*\])?\(([^)]*)\)`)
var imageExtensionRegexp = regexp.MustCompile(`(?i)^[.](png|gif|jpe?g|svg|tiff?|webp|x[bp]m|p[bgpn]m)$`)
var videoExtensionRegexp = regexp.MustCompile(`(?i)^[.](webm|mp4)$`)
var autolinkProtocolRegexp = regexp.MustCompile(`^(https?|ftp|file)$`)

var timestampFormat = "2006-01-02 Mon 15:04"
var validURLCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~:/?#[]@!$&'()*+,;="

// walkInline implements the object dispatcher and inline walker (4.5): it
// splits a Paragraph or emphasis container's contents into Text runs and
// objects, advancing byte by byte the way the teacher's parseInlineWithPos
// does, rather than pre-scanning for a delimiter set.
func (p *Parser) walkInline(id NodeID) {
	text := p.text
	begin, end := p.arena[id].contentsBegin, p.arena[id].contentsEnd
	previous, current := begin, begin
	for current < end {
		consumed := 0
		nodeBegin := current
		var n node
		switch text[current] {
		case '@':
			n, consumed = recognizeSnippet(text, current, end)
		case '{':
			n, consumed = recognizeMacro(text, current, end)
		case '<':
			if n2, c2, ok := recognizeRadioTarget(text, current, end); ok {
				n, consumed = n2, c2
			} else if n2, c2, ok := recognizeTarget(text, current, end); ok {
				n, consumed = n2, c2
			} else {
				n, consumed = recognizeTimestamp(text, current, end)
			}
		case '[':
			if n2, c2, ok := recognizeFootnoteRef(text, current, end); ok {
				n, consumed = n2, c2
			} else if n2, c2, ok := recognizeLink(p, text, current, end); ok {
				n, consumed = n2, c2
			} else {
				n, consumed = recognizeCookie(text, current, end)
			}
		case '*', '/', '_', '+', '=', '~':
			n, consumed = p.recognizeEmphasis(text, current, end)
		case 's':
			n, consumed = recognizeInlineSrc(text, current, end)
		case 'c':
			n, consumed = recognizeInlineCall(text, current, end)
		case ':':
			// An autolink's protocol precedes current (which sits on the
			// "://" colon), so its span starts behind current rather than
			// at it; consumed is measured from that earlier start.
			if n2, c2 := p.recognizeAutoLink(text, current, end, previous); c2 != 0 {
				n, consumed = n2, c2
				nodeBegin = n2.begin
			}
		}
		if consumed != 0 {
			if nodeBegin > previous {
				p.appendChild(id, p.newNode(node{kind: KindText, begin: previous, end: nodeBegin, contentsBegin: previous, contentsEnd: nodeBegin}))
			}
			n.begin = nodeBegin
			p.appendChild(id, p.newNode(n))
			current = nodeBegin + consumed
			previous = current
		} else {
			current++
		}
	}
	if previous < end {
		p.appendChild(id, p.newNode(node{kind: KindText, begin: previous, end: end, contentsBegin: previous, contentsEnd: end}))
	}
}

func recognizeSnippet(text []byte, begin, end int) (node, int) {
	m := snippetRegexp.FindSubmatchIndex(text[begin:end])
	if m == nil {
		return node{}, 0
	}
	consumed := m[1]
	backend := string(text[begin+m[2] : begin+m[3]])
	return node{kind: KindSnippet, end: begin + consumed, payload: SnippetPayload{Backend: backend}}, consumed
}

func recognizeMacro(text []byte, begin, end int) (node, int) {
	m := macroRegexp.FindSubmatchIndex(text[begin:end])
	if m == nil {
		return node{}, 0
	}
	consumed := m[1]
	name := string(text[begin+m[2] : begin+m[3]])
	args := strings.Split(string(text[begin+m[4]:begin+m[5]]), ",")
	return node{kind: KindMacro, end: begin + consumed, payload: MacroPayload{Name: name, Parameters: args}}, consumed
}

func recognizeTarget(text []byte, begin, end int) (node, int, bool) {
	m := targetRegexp.FindSubmatchIndex(text[begin:end])
	if m == nil {
		return node{}, 0, false
	}
	consumed := m[1]
	name := string(text[begin+m[2] : begin+m[3]])
	return node{kind: KindTarget, end: begin + consumed, payload: TargetPayload{Name: name}}, consumed, true
}

func recognizeRadioTarget(text []byte, begin, end int) (node, int, bool) {
	m := radioTargetRegexp.FindSubmatchIndex(text[begin:end])
	if m == nil {
		return node{}, 0, false
	}
	consumed := m[1]
	name := string(text[begin+m[2] : begin+m[3]])
	return node{kind: KindRadioTarget, end: begin + consumed, payload: RadioTargetPayload{Name: name}}, consumed, true
}

func recognizeTimestamp(text []byte, begin, end int) (node, int) {
	m := timestampRegexp.FindSubmatch(text[begin:end])
	if m == nil {
		return node{}, 0
	}
	ddmmyy, hhmm, interval, isDate := string(m[1]), string(m[3]), strings.TrimSpace(string(m[4])), false
	if hhmm == "" {
		hhmm, isDate = "00:00", true
	}
	t, err := time.Parse(timestampFormat, ddmmyy+" Mon "+hhmm)
	if err != nil {
		return node{}, 0
	}
	consumed := len(m[0])
	return node{kind: KindTimestamp, end: begin + consumed, payload: TimestampPayload{Time: t, IsDate: isDate, Interval: interval, Active: true}}, consumed
}

func recognizeFootnoteRef(text []byte, begin, end int) (node, int, bool) {
	m := footnoteRefRegexp.FindSubmatch(text[begin:end])
	if m == nil {
		return node{}, 0, false
	}
	name, definition := string(m[1]), string(m[3])
	if name == "" && definition == "" {
		return node{}, 0, false
	}
	consumed := len(m[0])
	payload := FnRefPayload{Name: name, InlineDefinition: definition}
	return node{kind: KindFnRef, end: begin + consumed, payload: payload}, consumed, true
}

func recognizeCookie(text []byte, begin, end int) (node, int) {
	m := cookieRegexp.FindSubmatch(text[begin:end])
	if m == nil {
		return node{}, 0
	}
	consumed := len(m[0])
	return node{kind: KindCookie, end: begin + consumed, payload: CookiePayload{Content: string(m[1])}}, consumed
}

func recognizeLink(p *Parser, text []byte, begin, end int) (node, int, bool) {
	region := text[begin:end]
	if len(region) < 3 || region[0] != '[' || region[1] != '[' || region[2] == '[' {
		return node{}, 0, false
	}
	closeIdx := indexString(region, "]]")
	if closeIdx == -1 {
		return node{}, 0, false
	}
	inner := string(region[2:closeIdx])
	rawParts := strings.SplitN(inner, "][", 2)
	link := rawParts[0]
	if strings.ContainsRune(link, '\n') {
		return node{}, 0, false
	}
	consumed := closeIdx + 2
	protocol := ""
	if parts := strings.SplitN(link, ":", 2); len(parts) == 2 {
		protocol = parts[0]
	}
	payload := p.ResolveLink(protocol, link)
	if protocol == "http" || protocol == "https" {
		if host := hostOf(link); host != "" {
			if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != host {
				payload.ASCIIHost = ascii
			}
		}
	}
	return node{kind: KindLink, end: begin + consumed, payload: payload}, consumed, true
}

func hostOf(url string) string {
	i := strings.Index(url, "://")
	if i == -1 {
		return ""
	}
	rest := url[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j != -1 {
		rest = rest[:j]
	}
	return rest
}

func indexString(b []byte, sub string) int {
	return strings.Index(string(b), sub)
}

func (p *Parser) recognizeEmphasis(text []byte, begin, end int) (node, int) {
	marker := text[begin]
	var kind Kind
	switch marker {
	case '*':
		kind = KindBold
	case '/':
		kind = KindItalic
	case '_':
		kind = KindUnderline
	case '+':
		kind = KindStrike
	case '=':
		kind = KindVerbatim
	case '~':
		kind = KindCode
	default:
		return node{}, 0
	}
	if !hasValidPreAndBorderChars(text, begin) {
		return node{}, 0
	}
	newlines := 0
	for i := begin + 1; i < end; i++ {
		if text[i] == '\n' {
			newlines++
			if newlines > p.MaxEmphasisNewLines {
				break
			}
		}
		if text[i] == marker && i != begin+1 && hasValidPostAndBorderChars(text, i, end) {
			n := node{kind: kind, end: i + 1, contentsBegin: begin + 1, contentsEnd: i}
			return n, i + 1 - begin
		}
	}
	return node{}, 0
}

func recognizeInlineSrc(text []byte, begin, end int) (node, int) {
	m := inlineSrcRegexp.FindSubmatchIndex(text[begin:end])
	if m == nil {
		return node{}, 0
	}
	consumed := m[1]
	lang := string(text[begin+m[2] : begin+m[3]])
	var params []string
	if m[6] >= 0 {
		params = strings.Fields(string(text[begin+m[6] : begin+m[7]]))
	}
	return node{kind: KindInlineSrc, end: begin + consumed, contentsBegin: begin + m[8], contentsEnd: begin + m[9], payload: InlineSrcPayload{Lang: lang, Parameters: params}}, consumed
}

func recognizeInlineCall(text []byte, begin, end int) (node, int) {
	m := inlineCallRegexp.FindSubmatchIndex(text[begin:end])
	if m == nil {
		return node{}, 0
	}
	consumed := m[1]
	name := string(text[begin+m[2] : begin+m[3]])
	args := string(text[begin+m[6] : begin+m[7]])
	return node{kind: KindInlineCall, end: begin + consumed, payload: InlineCallPayload{Name: name, Arguments: args}}, consumed
}

// recognizeAutoLink recognizes a bare "proto://..." text run as a link when
// AutoLink is enabled, mirroring the teacher's ":" dispatch on "://". lowerBound
// is the end of the last already-emitted sibling node: the protocol scan must
// not walk back past it, or it would claim bytes another node already owns.
func (p *Parser) recognizeAutoLink(text []byte, current, end, lowerBound int) (node, int) {
	if !p.AutoLink || current == lowerBound || end-current < 3 || string(text[current:current+3]) != "://" {
		return node{}, 0
	}
	protoStart := current - 1
	for protoStart > lowerBound && isLetter(text[protoStart-1]) {
		protoStart--
	}
	protocol := string(text[protoStart:current])
	if !autolinkProtocolRegexp.MatchString(protocol) {
		return node{}, 0
	}
	i := current
	for i < end && strings.ContainsRune(validURLCharacters, rune(text[i])) {
		i++
	}
	path := string(text[current:i])
	if path == "://" {
		return node{}, 0
	}
	url := protocol + path
	payload := p.ResolveLink(protocol, url)
	payload.AutoLink = true
	n := node{kind: KindLink, payload: payload}
	n.begin = protoStart
	n.end = i
	return n, i - protoStart
}

func isLetter(b byte) bool { return unicode.IsLetter(rune(b)) }

func hasValidPreAndBorderChars(text []byte, i int) bool {
	return isValidBorderChar(nextRune(text, i)) && isValidPreChar(prevRune(text, i))
}

func hasValidPostAndBorderChars(text []byte, i, end int) bool {
	return isValidPostChar(nextRuneBounded(text, i, end)) && isValidBorderChar(prevRune(text, i))
}

func prevRune(text []byte, i int) rune {
	r, _ := utf8.DecodeLastRune(text[:i])
	return r
}

func nextRune(text []byte, i int) rune {
	_, c := utf8.DecodeRune(text[i:])
	r, _ := utf8.DecodeRune(text[i+c:])
	return r
}

func nextRuneBounded(text []byte, i, end int) rune {
	_, c := utf8.DecodeRune(text[i:end])
	if i+c >= end {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(text[i+c : end])
	return r
}

func isValidPreChar(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r) || strings.ContainsRune(`-({'"`, r)
}

func isValidPostChar(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r) || strings.ContainsRune("-.,:!?;'\")}[\\", r)
}

func isValidBorderChar(r rune) bool { return !unicode.IsSpace(r) }
