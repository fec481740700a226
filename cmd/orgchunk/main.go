// Command orgchunk folds Org documents into token-budgeted chunks for an
// embedding or RAG ingestion pipeline.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/adrg/frontmatter"
	"github.com/alecthomas/kong"
	"github.com/jwalton/gchalk"
	"github.com/sanity-io/litter"

	"github.com/fenwick-labs/orgtree/internal/chunk"
	"github.com/fenwick-labs/orgtree/internal/orglog"
	"github.com/fenwick-labs/orgtree/org"
)

var cli struct {
	Files     []string `arg:"" help:"Glob patterns of .org files to chunk (prefix with ! to exclude)."`
	Root      string   `default:"." help:"Project root the glob patterns are resolved against."`
	Encoding  string   `default:"cl100k_base" help:"tiktoken encoding used for token budgeting."`
	MaxTokens int      `default:"800" help:"Split sections larger than this many tokens on paragraph boundaries."`
	Debug     bool     `help:"Dump the raw chunk structs with litter instead of a summary."`
	NoColor   bool     `help:"Disable colored summary output."`
}

func main() {
	kctx := kong.Parse(&cli, kong.Description("Chunk Org documents for embedding pipelines."))
	ctx := orglog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	files, err := expandGlobs(cli.Root, cli.Files)
	kctx.FatalIfErrorf(err)
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no files matched")
		os.Exit(1)
	}

	var all []chunk.Chunk
	for _, f := range files {
		chunks, err := chunkFile(ctx, f)
		kctx.FatalIfErrorf(err)
		all = append(all, chunks...)
	}

	if cli.Debug {
		litter.Dump(all)
		return
	}
	printSummary(all)
}

func chunkFile(ctx context.Context, path string) ([]chunk.Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fm map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, err
	}
	p := org.New().Parse(body, path)
	if p.HasErrors() {
		orglog.From(ctx).Warn("parse recorded recoverable errors", slog.String("path", path), slog.Int("count", len(p.Errors)))
	}
	return chunk.Build(ctx, p, path, chunk.Options{Encoding: cli.Encoding, MaxTokens: cli.MaxTokens})
}

func printSummary(chunks []chunk.Chunk) {
	paint := gchalk.WithBold()
	if cli.NoColor {
		gchalk.SetLevel(gchalk.LevelNone)
	}
	for _, c := range chunks {
		fmt.Printf("%s %s (%d tokens)\n", paint.Cyan(c.Path), gchalk.Yellow(c.Heading), c.TokenCount)
	}
	fmt.Printf("%s\n", gchalk.Green(fmt.Sprintf("%d chunks total", len(chunks))))
}
