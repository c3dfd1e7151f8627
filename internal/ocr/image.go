package ocr

import (
	"context"
	"fmt"
)

func (e *Extractor) imageOCR(ctx context.Context, path string) passResult {
	txt, warns, err := e.tesseract(ctx, path)
	return passResult{name: PassImageOCR, text: txt, warns: warns, err: err}
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", stderrWarning(errb), fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
