// Package org is an Org mode syntax processor.
//
// It parses plain text into an arena-backed, byte-offset tree that consumers
// can traverse without reparsing. Every node is an O(1) slice of the original
// buffer; the parser never copies the input.
//
// You probably want to start with something like this:
//
//	p := org.New().Parse(text, "./notes.org")
//	for it := p.Iter(); it.Next(); {
//	    fmt.Println(it.Node().Kind(), it.Node().Begin(), it.Node().End())
//	}
package org

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Config holds parser-wide knobs, mirroring the defaults a caller would
// otherwise have to wire up by hand.
type Config struct {
	MaxEmphasisNewLines int          // maximum newlines allowed inside an emphasis span
	AutoLink            bool         // recognize bare "proto://..." text runs as links
	Log                 *log.Logger  // carried for callers; the parser itself writes nothing to it
	ResolveLink         func(protocol, url string) LinkPayload
}

// New returns a new Config with sane defaults.
func New() *Config {
	return &Config{
		AutoLink:            true,
		MaxEmphasisNewLines: 1,
		Log:                 log.New(os.Stderr, "org: ", 0),
		ResolveLink: func(protocol, url string) LinkPayload {
			return LinkPayload{Protocol: protocol, URL: url}
		},
	}
}

// Silent disables all logging of warnings during parsing.
func (c *Config) Silent() *Config {
	c.Log = log.New(io.Discard, "", 0)
	return c
}

// Parser contains the arena, the source buffer and the parsing results for
// one document. A Parser is single-use: call Parse once, then read.
type Parser struct {
	*Config
	Path     string
	text     []byte
	arena    []node
	docID    NodeID
	rootID   NodeID
	finished bool
	Errors   []*ParseError
}

// Parse builds a Document node spanning the whole input and drives the
// worklist to a fixed point. To allow method chaining, a panic recovered
// from a malformed recognizer is converted into a ParseError on Errors
// rather than propagated to the caller.
func (c *Config) Parse(text []byte, path string) (p *Parser) {
	p = &Parser{
		Config: c,
		Path:   path,
		text:   text,
		arena:  make([]node, 0, len(text)/8+1),
		rootID: noNode,
	}
	p.docID = p.newNode(node{kind: KindDocument, begin: 0, end: len(text), contentsBegin: 0, contentsEnd: len(text)})
	defer func() {
		if recovered := recover(); recovered != nil {
			p.addError(ErrorTypeInvalidStructure, "parse panic", p.docID, fmt.Errorf("recovered from panic: %v", recovered))
		}
	}()
	p.run()
	p.finished = true
	return p
}

// Finished reports whether Parse has produced at least one child under the
// document node.
func (p *Parser) Finished() bool {
	return p.arena[p.docID].firstChild != noNode
}

// run drives the pre-order worklist described in the component design: visit
// Document, walk any unparsed container's contents, then advance using
// first-child else next-sibling else ascend.
func (p *Parser) run() {
	cur := p.docID
	for {
		if isContainerKind(p.arena[cur].kind) && p.arena[cur].firstChild == noNode {
			p.walk(cur)
		}
		if p.arena[cur].firstChild != noNode {
			cur = p.arena[cur].firstChild
			continue
		}
		for {
			if p.arena[cur].nextSibling != noNode {
				cur = p.arena[cur].nextSibling
				break
			}
			if p.arena[cur].parent == noNode {
				return
			}
			cur = p.arena[cur].parent
		}
	}
}

func isContainerKind(k Kind) bool {
	switch k {
	case KindDocument, KindHeadline, KindSection, KindList, KindListItem,
		KindBlock, KindDynBlock, KindDrawer, KindFnDef,
		KindParagraph, KindBold, KindItalic, KindUnderline, KindStrike:
		return true
	}
	return false
}

// walk dispatches to the correct layer's walker based on the container's
// own kind.
func (p *Parser) walk(id NodeID) {
	switch p.arena[id].kind {
	case KindDocument, KindHeadline:
		p.walkHeadlines(id)
	case KindSection, KindDrawer, KindFnDef:
		p.walkElements(id)
	case KindBlock:
		if !p.arena[id].payload.(BlockPayload).Raw {
			p.walkElements(id)
		}
	case KindDynBlock:
		p.walkElements(id)
	case KindList:
		p.walkListItems(id)
	case KindListItem:
		p.walkElements(id)
	case KindParagraph, KindBold, KindItalic, KindUnderline, KindStrike:
		p.walkInline(id)
	}
}

// NodeRef is a read-only handle into a Parser's arena, returned by
// Iterator.Node and by the Parent/FirstChild/NextSibling accessors.
type NodeRef struct {
	p  *Parser
	id NodeID
}

func (p *Parser) ref(id NodeID) NodeRef { return NodeRef{p: p, id: id} }

func (n NodeRef) ID() NodeID            { return n.id }
func (n NodeRef) Kind() Kind            { return n.p.arena[n.id].kind }
func (n NodeRef) Begin() int            { return n.p.arena[n.id].begin }
func (n NodeRef) End() int              { return n.p.arena[n.id].end }
func (n NodeRef) ContentsBegin() int    { return n.p.arena[n.id].contentsBegin }
func (n NodeRef) ContentsEnd() int      { return n.p.arena[n.id].contentsEnd }
func (n NodeRef) Payload() interface{}  { return n.p.arena[n.id].payload }
func (n NodeRef) Text() string          { return string(n.p.text[n.Begin():n.End()]) }
func (n NodeRef) Contents() string      { return string(n.p.text[n.ContentsBegin():n.ContentsEnd()]) }

func (n NodeRef) Parent() (NodeRef, bool) {
	id := n.p.arena[n.id].parent
	if id == noNode {
		return NodeRef{}, false
	}
	return n.p.ref(id), true
}

func (n NodeRef) FirstChild() (NodeRef, bool) {
	id := n.p.arena[n.id].firstChild
	if id == noNode {
		return NodeRef{}, false
	}
	return n.p.ref(id), true
}

func (n NodeRef) NextSibling() (NodeRef, bool) {
	id := n.p.arena[n.id].nextSibling
	if id == noNode {
		return NodeRef{}, false
	}
	return n.p.ref(id), true
}

// Range iterates over the node's immediate children, stopping if f returns
// false.
func (n NodeRef) Range(f func(NodeRef) bool) {
	child, ok := n.FirstChild()
	for ok {
		if !f(child) {
			return
		}
		child, ok = child.NextSibling()
	}
}

// Iterator is a pre-order walk over the tree rooted at Root, which is
// created lazily the first time Iter is called.
type Iterator struct {
	p    *Parser
	cur  NodeID
	done bool
}

// Iter ensures a Root wraps Document and returns a pre-order iterator over
// all nodes, starting with Root itself.
func (p *Parser) Iter() *Iterator {
	if p.rootID == noNode {
		root := p.newNode(node{kind: KindRoot, begin: 0, end: len(p.text), contentsBegin: 0, contentsEnd: len(p.text)})
		p.appendChild(root, p.docID)
		p.rootID = root
	}
	return &Iterator{p: p, cur: noNode}
}

func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if it.cur == noNode {
		it.cur = it.p.rootID
		return true
	}
	n := &it.p.arena[it.cur]
	if n.firstChild != noNode {
		it.cur = n.firstChild
		return true
	}
	for {
		if it.p.arena[it.cur].nextSibling != noNode {
			it.cur = it.p.arena[it.cur].nextSibling
			return true
		}
		if it.p.arena[it.cur].parent == noNode {
			it.done = true
			return false
		}
		it.cur = it.p.arena[it.cur].parent
	}
}

func (it *Iterator) Node() NodeRef { return it.p.ref(it.cur) }
