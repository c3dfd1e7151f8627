package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/book-of-knowledge/internal/textfix"
)

var (
	flipTargetsFile string
	flipLines       []string
)

func init() {
	flipCmd.Flags().StringVar(&flipTargetsFile, "targets", "", "file listing the mirrored lines, one per line")
	flipCmd.Flags().StringArrayVar(&flipLines, "line", nil, "a mirrored line to reverse (repeatable)")
}

// flipCmd repairs lines that OCR read right to left
var flipCmd = &cobra.Command{
	Use:   "flip <text_file>",
	Short: "Reverse mirrored lines in a text dump",
	Long: `Reverse the characters of every line whose trimmed text matches a target.
The original is kept as <name>.bak and the result is written to <name>_fixed<ext>.

Examples:
  # Targets from a file
  bok flip --targets mirrored.txt results/S-001.txt

  # Targets on the command line
  bok flip --line SGNIWARD --line ESEHT results/S-001.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runFlip,
}

func flipTargets() (map[string]struct{}, error) {
	targets := make(map[string]struct{})
	if flipTargetsFile != "" {
		f, err := os.Open(flipTargetsFile)
		if err != nil {
			return nil, fmt.Errorf("open targets: %w", err)
		}
		defer f.Close()
		fromFile, err := textfix.Targets(f)
		if err != nil {
			return nil, fmt.Errorf("read targets: %w", err)
		}
		for t := range fromFile {
			targets[t] = struct{}{}
		}
	}
	for _, l := range flipLines {
		if t := strings.TrimSpace(l); t != "" {
			targets[t] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets: pass --targets or --line")
	}
	return targets, nil
}

func runFlip(cmd *cobra.Command, args []string) error {
	targets, err := flipTargets()
	if err != nil {
		return err
	}
	in := args[0]
	original, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	fixed, changed := textfix.FlipLines(string(original), targets)

	backup := in + ".bak"
	if err := os.WriteFile(backup, original, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	ext := filepath.Ext(in)
	out := strings.TrimSuffix(in, ext) + "_fixed" + ext
	if err := os.WriteFile(out, []byte(fixed), 0o644); err != nil {
		return fmt.Errorf("write fixed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Flipped %d line(s)\n", changed)
	fmt.Fprintf(w, "Backup saved: %s\n", backup)
	fmt.Fprintf(w, "Fixed file:   %s\n", out)
	return nil
}
