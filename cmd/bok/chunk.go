package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/book-of-knowledge/internal/chunk"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pagedump"
)

var (
	chunkOut     string
	chunkMax     int
	chunkOverlap int
)

func init() {
	defaults := chunk.DefaultOptions()
	chunkCmd.Flags().StringVar(&chunkOut, "out", "", "output JSONL path (default: <dump_file>.chunks.jsonl, - for stdout)")
	chunkCmd.Flags().IntVar(&chunkMax, "max", defaults.MaxChars, "max chunk characters")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", defaults.Overlap, "overlap characters")
}

// chunkCmd splits a page dump into retrieval-sized chunks
var chunkCmd = &cobra.Command{
	Use:   "chunk <dump_file>",
	Short: "Chunk a page dump into JSONL",
	Long: `Split a page dump into header and paragraph chunks, one JSON object per line.

Examples:
  # Write results/S-001.txt.chunks.jsonl
  bok chunk results/S-001.txt

  # Smaller chunks to stdout
  bok chunk --max 600 --overlap 80 --out - results/S-001.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func runChunk(cmd *cobra.Command, args []string) error {
	pages, err := pagedump.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	chunks := chunk.Pages(pages, chunk.Options{MaxChars: chunkMax, Overlap: chunkOverlap})

	if chunkOut == "-" {
		return chunk.WriteJSONL(cmd.OutOrStdout(), chunks)
	}
	out := chunkOut
	if out == "" {
		out = args[0] + ".chunks.jsonl"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := chunk.WriteJSONL(f, chunks); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d chunks -> %s\n", len(chunks), out)
	return nil
}
