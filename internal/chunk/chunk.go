// Package chunk folds a parsed org document into flat, token-budgeted
// chunks suitable for an embedding/RAG pipeline, one per section.
package chunk

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"

	"github.com/fenwick-labs/orgtree/internal/orglog"
	"github.com/fenwick-labs/orgtree/org"
)

// Chunk is the content of one section, or one paragraph-bounded part of an
// oversized section, budgeted by token count.
type Chunk struct {
	ID         string
	Path       string
	Heading    string
	Level      int
	Text       string
	TokenCount int
}

// Options controls chunk construction.
type Options struct {
	Encoding  string // tiktoken encoding name, e.g. "cl100k_base"
	MaxTokens int    // sections longer than this are split on paragraph boundaries; a single paragraph is never split
}

// Build walks a parsed document's Headline/Section tree and returns one
// chunk per section, splitting any section whose token count exceeds
// opts.MaxTokens across its paragraphs.
func Build(ctx context.Context, p *org.Parser, path string, opts Options) ([]Chunk, error) {
	logger := orglog.From(ctx)
	enc, err := tiktoken.GetEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	var walk func(n org.NodeRef, heading string, level int)
	walk = func(n org.NodeRef, heading string, level int) {
		n.Range(func(child org.NodeRef) bool {
			switch child.Kind() {
			case org.KindSection:
				text := sectionText(child)
				count := len(enc.Encode(text, nil, nil))
				if count > opts.MaxTokens {
					logger.Debug("splitting oversized section", slog.String("heading", heading), slog.Int("tokens", count))
					for _, part := range splitByParagraph(child, opts.MaxTokens, enc) {
						chunks = append(chunks, Chunk{
							ID: uuid.NewString(), Path: path, Heading: heading, Level: level,
							Text: part, TokenCount: len(enc.Encode(part, nil, nil)),
						})
					}
				} else if text != "" {
					chunks = append(chunks, Chunk{
						ID: uuid.NewString(), Path: path, Heading: heading, Level: level,
						Text: text, TokenCount: count,
					})
				}
			case org.KindHeadline:
				hp := child.Payload().(org.HeadlinePayload)
				walk(child, hp.Title, hp.Level)
			}
			return true
		})
	}
	root := docNode(p)
	walk(root, "", 0)
	logger.Info("chunked document", slog.String("path", path), slog.Int("chunks", len(chunks)))
	return chunks, nil
}

func docNode(p *org.Parser) org.NodeRef {
	it := p.Iter()
	it.Next() // Root
	it.Next() // Document
	return it.Node()
}

func sectionText(section org.NodeRef) string {
	var b strings.Builder
	section.Range(func(n org.NodeRef) bool {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.Text())
		return true
	})
	return b.String()
}

func splitByParagraph(section org.NodeRef, maxTokens int, enc *tiktoken.Tiktoken) []string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	section.Range(func(n org.NodeRef) bool {
		candidate := cur.String()
		if candidate != "" {
			candidate += "\n"
		}
		candidate += n.Text()
		if len(enc.Encode(candidate, nil, nil)) > maxTokens && cur.Len() > 0 {
			flush()
			candidate = n.Text()
		}
		cur.Reset()
		cur.WriteString(candidate)
		return true
	})
	flush()
	return parts
}
