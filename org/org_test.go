package org

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// dump renders a pre-order, indented trace of kind and span information,
// used by table tests to compare an actual tree against an expected one
// with a readable diff on mismatch.
func dump(p *Parser) string {
	var b strings.Builder
	depth := map[NodeID]int{}
	for it := p.Iter(); it.Next(); {
		n := it.Node()
		d := depth[n.ID()]
		fmt.Fprintf(&b, "%s%s(%d,%d)", strings.Repeat("  ", d), n.Kind(), n.Begin(), n.End())
		if n.ContentsBegin() != 0 || n.ContentsEnd() != 0 {
			fmt.Fprintf(&b, " contents(%d,%d)", n.ContentsBegin(), n.ContentsEnd())
		}
		b.WriteByte('\n')
		child, ok := n.FirstChild()
		for ok {
			depth[child.ID()] = d + 1
			child, ok = child.NextSibling()
		}
	}
	return b.String()
}

func assertDump(t *testing.T, p *Parser, want string) {
	t.Helper()
	got := dump(p)
	want = strings.TrimLeft(want, "\n")
	if got != want {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(want),
			B:        difflib.SplitLines(got),
			FromFile: "want",
			ToFile:   "got",
			Context:  3,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("tree mismatch:\n%s", text)
	}
}

func TestScenarioSimpleHeadline(t *testing.T) {
	p := New().Parse([]byte("* Heading\nBody.\n"), "")
	assertDump(t, p, `
Root(0,16) contents(0,16)
  Document(0,16) contents(0,16)
    Headline(0,16) contents(10,16)
      Section(10,16) contents(10,16)
        Paragraph(10,16) contents(10,15)
          Text(10,15) contents(10,15)
`)
}

func TestScenarioTwoParagraphs(t *testing.T) {
	p := New().Parse([]byte("Para one.\n\nPara two.\n"), "")
	var paras []NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindParagraph {
			paras = append(paras, it.Node())
		}
	}
	if len(paras) != 2 {
		t.Fatalf("want 2 paragraphs, got %d", len(paras))
	}
	if paras[0].ContentsEnd() != 9 {
		t.Errorf("first paragraph contentsEnd = %d, want 9", paras[0].ContentsEnd())
	}
	if paras[1].ContentsEnd() != 20 {
		t.Errorf("second paragraph contentsEnd = %d, want 20", paras[1].ContentsEnd())
	}
}

func TestScenarioBoldInParagraph(t *testing.T) {
	p := New().Parse([]byte("A *bold* end."), "")
	var para NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindParagraph {
			para = it.Node()
		}
	}
	var kinds []Kind
	para.Range(func(n NodeRef) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	want := []Kind{KindText, KindBold, KindText}
	if len(kinds) != len(want) {
		t.Fatalf("want %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("want %v, got %v", want, kinds)
		}
	}
}

func TestScenarioList(t *testing.T) {
	p := New().Parse([]byte("- one\n- two\n"), "")
	var list NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindList {
			list = it.Node()
		}
	}
	if list.Payload().(ListPayload).Indent != 0 {
		t.Fatalf("want indent 0, got %d", list.Payload().(ListPayload).Indent)
	}
	var items int
	list.Range(func(n NodeRef) bool {
		if n.Kind() == KindListItem {
			items++
		}
		return true
	})
	if items != 2 {
		t.Fatalf("want 2 items, got %d", items)
	}
}

func TestScenarioOrderedListItemValueAndStatus(t *testing.T) {
	p := New().Parse([]byte("1. [@3] [X] done item\n2. [ ] pending item\n"), "")
	var items []NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindListItem {
			items = append(items, it.Node())
		}
	}
	if len(items) != 2 {
		t.Fatalf("want 2 list items, got %d", len(items))
	}
	first := items[0].Payload().(ListItemPayload)
	if first.Value != "3" {
		t.Errorf("first item Value = %q, want 3", first.Value)
	}
	if first.Status != "X" {
		t.Errorf("first item Status = %q, want X", first.Status)
	}
	if got := firstParagraphText(items[0]); got != "done item" {
		t.Errorf("first item body = %q, want %q", got, "done item")
	}
	second := items[1].Payload().(ListItemPayload)
	if second.Status != " " {
		t.Errorf("second item Status = %q, want a space", second.Status)
	}
	if got := firstParagraphText(items[1]); got != "pending item" {
		t.Errorf("second item body = %q, want %q", got, "pending item")
	}
}

func firstParagraphText(item NodeRef) string {
	var text string
	item.Range(func(n NodeRef) bool {
		if n.Kind() == KindParagraph {
			text = n.Contents()
			return false
		}
		return true
	})
	return text
}

func TestScenarioBlockNotRecursivelyParsed(t *testing.T) {
	p := New().Parse([]byte("#+BEGIN_SRC rust\nfn main(){}\n#+END_SRC\n"), "")
	var blocks int
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindBlock {
			blocks++
			if ok := it.Node().Payload().(BlockPayload).Raw; !ok {
				t.Fatalf("expected src block to be marked Raw")
			}
			_, has := it.Node().FirstChild()
			if has {
				t.Fatalf("raw block must not have parsed children")
			}
		}
	}
	if blocks != 1 {
		t.Fatalf("want 1 block, got %d", blocks)
	}
}

func TestScenarioUnterminatedEmphasisFallsBackToText(t *testing.T) {
	p := New().Parse([]byte("*not bold"), "")
	var para NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindParagraph {
			para = it.Node()
		}
	}
	var count int
	var onlyKind Kind
	para.Range(func(n NodeRef) bool {
		count++
		onlyKind = n.Kind()
		return true
	})
	if count != 1 || onlyKind != KindText {
		t.Fatalf("want a single Text child, got %d children, first kind %v", count, onlyKind)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	c := New()
	p := c.Parse([]byte("* A\nBody\n"), "")
	before := dump(p)
	p.run()
	after := dump(p)
	if before != after {
		t.Fatalf("parse is not idempotent:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestInvariantSpansAreOrdered(t *testing.T) {
	p := New().Parse([]byte("* A\n- one\n- two\nSome *bold* text.\n"), "")
	for it := p.Iter(); it.Next(); {
		n := it.Node()
		if n.Begin() > n.End() {
			t.Fatalf("%v has begin %d > end %d", n.Kind(), n.Begin(), n.End())
		}
		var prevEnd = -1
		n.Range(func(c NodeRef) bool {
			if c.Begin() < prevEnd {
				t.Fatalf("%v child %v begins at %d before previous sibling ended at %d", n.Kind(), c.Kind(), c.Begin(), prevEnd)
			}
			prevEnd = c.End()
			return true
		})
	}
}

func TestScenarioAutoLinkSpanExcludesTrailingText(t *testing.T) {
	p := New().Parse([]byte("See https://example.com/a for details.\n"), "")
	var para NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindParagraph {
			para = it.Node()
		}
	}
	var link NodeRef
	var found bool
	para.Range(func(n NodeRef) bool {
		if n.Kind() == KindLink {
			link, found = n, true
		}
		return true
	})
	if !found {
		t.Fatal("expected a Link object in the paragraph")
	}
	if link.Text() != "https://example.com/a" {
		t.Fatalf("link span = %q, want exactly the URL with no trailing text", link.Text())
	}
	payload := link.Payload().(LinkPayload)
	if !payload.AutoLink {
		t.Fatal("expected AutoLink to be true")
	}
}

func TestScenarioAutoLinkAfterPriorObjectDoesNotOverlap(t *testing.T) {
	p := New().Parse([]byte("*bold* then https://example.com/x end.\n"), "")
	var para NodeRef
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindParagraph {
			para = it.Node()
		}
	}
	prevEnd := -1
	para.Range(func(n NodeRef) bool {
		if n.Begin() < prevEnd {
			t.Fatalf("%v begins at %d, before previous sibling ended at %d", n.Kind(), n.Begin(), prevEnd)
		}
		prevEnd = n.End()
		return true
	})
}

func TestScenarioListTrailingBlankLineNotPartOfNextParagraph(t *testing.T) {
	p := New().Parse([]byte("- one\n\nPara\n"), "")
	var list, para NodeRef
	for it := p.Iter(); it.Next(); {
		switch it.Node().Kind() {
		case KindList:
			list = it.Node()
		case KindParagraph:
			para = it.Node()
		}
	}
	if list.End() != 7 {
		t.Errorf("list end = %d, want 7 (trailing blank line consumed)", list.End())
	}
	if para.Begin() != 7 || para.ContentsEnd() != 11 {
		t.Errorf("paragraph span = (%d,%d contents end %d), want begin 7, contents end 11", para.Begin(), para.End(), para.ContentsEnd())
	}
}

func TestScenarioLatexEnvironmentBackreferenceName(t *testing.T) {
	p := New().Parse([]byte("\\begin{equation}\nx = y\n\\end{equation}\nAfter.\n"), "")
	var env NodeRef
	var found bool
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindLatexEnvironment {
			env, found = it.Node(), true
		}
	}
	if !found {
		t.Fatal("expected a LatexEnvironment node")
	}
	if got := env.Payload().(LatexEnvironmentPayload).Name; got != "equation" {
		t.Errorf("environment name = %q, want equation", got)
	}
	if env.ContentsBegin() > env.ContentsEnd() {
		t.Errorf("contentsBegin %d > contentsEnd %d, violates span invariant", env.ContentsBegin(), env.ContentsEnd())
	}
}

func TestScenarioLatexEnvironmentMismatchedNameNotRecognized(t *testing.T) {
	p := New().Parse([]byte("\\begin{equation}\nx = y\n\\end{align}\n"), "")
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindLatexEnvironment {
			t.Fatal("mismatched \\begin/\\end names must not be recognized as one environment")
		}
	}
}

func TestFootnoteDefinitionRequiresColumnZero(t *testing.T) {
	p := New().Parse([]byte("  [fn:x] not a definition\n"), "")
	for it := p.Iter(); it.Next(); {
		if it.Node().Kind() == KindFnDef {
			t.Fatalf("indented [fn:x] line must not be recognized as a footnote definition")
		}
	}
}
