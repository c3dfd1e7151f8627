// Package textfix repairs lines that OCR read mirrored, such as title-block
// notes printed vertically along the sheet border.
package textfix

import (
	"bufio"
	"io"
	"strings"
)

// FlipLines reverses the characters of every line whose trimmed content is in
// targets. Line endings ("\n", "\r\n" or "\r") are preserved. It returns the
// repaired text and the number of lines flipped.
func FlipLines(text string, targets map[string]struct{}) (string, int) {
	var b strings.Builder
	b.Grow(len(text))
	changed := 0
	for len(text) > 0 {
		line, nl, rest := cutLine(text)
		text = rest
		if _, ok := targets[strings.TrimSpace(line)]; ok {
			line = reverse(line)
			changed++
		}
		b.WriteString(line)
		b.WriteString(nl)
	}
	return b.String(), changed
}

// Targets reads one target per line from r, skipping blank lines.
func Targets(r io.Reader) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if t := strings.TrimSpace(sc.Text()); t != "" {
			out[t] = struct{}{}
		}
	}
	return out, sc.Err()
}

// cutLine splits text into its first line, that line's terminator and the rest.
func cutLine(text string) (line, nl, rest string) {
	i := strings.IndexAny(text, "\r\n")
	if i < 0 {
		return text, "", ""
	}
	if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
		return text[:i], "\r\n", text[i+2:]
	}
	return text[:i], text[i : i+1], text[i+1:]
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
