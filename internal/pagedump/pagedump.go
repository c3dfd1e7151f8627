// Package pagedump writes and reads page-segmented text dumps, one file per
// source document, for operators and for the chunker.
package pagedump

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// EmptyPage marks a page that produced no text.
const EmptyPage = "[EMPTY]"

var pageMarker = regexp.MustCompile(`(?im)^=+\s*PAGE\s+(\d+)\s*=+\s*$`)

func marker(i int) string {
	bar := strings.Repeat("=", 20)
	return fmt.Sprintf("%s PAGE %d %s", bar, i, bar)
}

// PathFor returns the dump path for source inside dir: "<dir>/<stem>.txt".
func PathFor(dir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+".txt")
}

// Encode writes the dump format to w.
func Encode(w io.Writer, source string, pages []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "FILE: %s\nPAGES: %d\n\n", filepath.Base(source), len(pages))
	for i, p := range pages {
		body := strings.TrimSpace(p)
		if body == "" {
			body = EmptyPage
		}
		fmt.Fprintf(bw, "%s\n%s\n\n", marker(i+1), body)
	}
	return bw.Flush()
}

// Write creates (or replaces) the dump at path, creating parent directories.
func Write(path, source string, pages []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dump dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}
	if err := Encode(f, source, pages); err != nil {
		_ = f.Close()
		return fmt.Errorf("write dump: %w", err)
	}
	return f.Close()
}

// ReadPages parses a dump back into pages. Content without page markers is
// returned whole as page 1.
func ReadPages(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := strings.ReplaceAll(string(b), "\r\n", "\n")
	locs := pageMarker.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return []string{content}, nil
	}
	pages := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		page := strings.TrimSpace(content[loc[1]:end])
		if page == EmptyPage {
			page = ""
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// ReadFile is ReadPages over the file at path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPages(f)
}
