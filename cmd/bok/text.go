package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ocr"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pagedump"
)

var (
	textDumpDir string
	textPages   bool
)

func init() {
	textCmd.Flags().StringVar(&textDumpDir, "dump-dir", "", "also write a page dump into this directory")
	textCmd.Flags().BoolVar(&textPages, "pages", false, "print the page dump format instead of joined text")
}

// textCmd runs text acquisition only
var textCmd = &cobra.Command{
	Use:   "text <document>",
	Short: "Extract text from a PDF, image or text file",
	Long: `Acquire the text of one document using the PDF text layer and OCR.

Examples:
  # Print the combined text
  bok text drawings/S-001.pdf

  # Print with page markers and keep a dump in ./results
  bok text --pages --dump-dir results drawings/S-001.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func newTextExtractor() *extract.OCRAdapter {
	return extract.NewOCRAdapter(ocr.NewExtractor(ocr.FromAppConfig(cfg.OCR), logger))
}

func runText(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cfg.OCR.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.OCR.Timeout)
		defer cancel()
	}

	res, err := newTextExtractor().Extract(ctx, args[0])
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Warn("text.warning", "path", args[0], "warning", w)
	}

	if textDumpDir != "" {
		path := pagedump.PathFor(textDumpDir, args[0])
		if err := pagedump.Write(path, args[0], res.Pages); err != nil {
			return err
		}
		logger.Info("text.dump.ok", "path", path, "pages", len(res.Pages))
	}

	out := cmd.OutOrStdout()
	if textPages {
		return pagedump.Encode(out, args[0], res.Pages)
	}
	_, err = fmt.Fprintln(out, res.Text)
	return err
}
