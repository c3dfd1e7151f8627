package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) passResult {
	// pdftotext -layout -enc UTF-8 -eol unix -l <max> <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-l", strconv.Itoa(e.cfg.MaxPages), path, "-")
	if err != nil {
		return passResult{name: PassPDFText, warns: stderrWarning(errb), err: err}
	}
	text := string(out)
	return passResult{name: PassPDFText, text: text, pages: splitPages(text)}
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) passResult {
	res := passResult{name: PassPDFOCR}
	tmpDir, err := os.MkdirTemp("", "bok-pp-*")
	if err != nil {
		res.err = err
		return res
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tmpdir.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -l <max> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", strconv.Itoa(e.cfg.DPI), "-l", strconv.Itoa(e.cfg.MaxPages), "-png", path, prefix)
	if err != nil {
		res.warns = stderrWarning(errb)
		res.err = err
		return res
	}

	// pdftoppm zero-pads page numbers, so a lexical sort is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		res.err = errors.New("pdftoppm produced no images")
		return res
	}

	var pages []string
	for _, img := range matches {
		txt, w, err := e.tesseract(ctx, img)
		res.warns = append(res.warns, w...)
		if err != nil {
			res.warns = append(res.warns, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	res.pages = pages
	res.text = strings.Join(pages, "\n")
	return res
}

func stderrWarning(errb []byte) []string {
	s := strings.TrimSpace(string(errb))
	if s == "" {
		return nil
	}
	return []string{truncate(s, 512)}
}
