package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
)

var (
	fieldsPretty bool
	fieldsTrace  bool
)

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsPretty, "pretty", false, "indent the JSON record")
	fieldsCmd.Flags().BoolVar(&fieldsTrace, "trace", false, "log every searcher decision at debug level")
}

// fieldsCmd runs the field engine over already extracted text
var fieldsCmd = &cobra.Command{
	Use:   "fields [file]",
	Short: "Extract the field record from a text file or stdin",
	Long: `Run the field engine over document text and print the record as JSON.

Examples:
  # Extract from a page dump
  bok fields results/S-001.txt

  # Extract from stdin
  pdftotext drawing.pdf - | bok fields -

  # Show how each field was decided
  bok fields --trace --log-level debug notes.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFields,
}

func runFields(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var opts []fields.Option
	if fieldsTrace {
		opts = append(opts, fields.WithTracer(fields.SlogTracer{Logger: logger}))
	}
	engine := extract.NewEngineAdapter(fields.NewBuilder(nil, opts...))

	res, err := engine.ExtractFields(cmd.Context(), text)
	if err != nil {
		return err
	}
	out := res.JSON
	if fieldsPretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, res.JSON, "", "  "); err != nil {
			return fmt.Errorf("indent record: %w", err)
		}
		out = buf.Bytes()
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
