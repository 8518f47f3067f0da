package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const pdfRasterDPI = "200"

// TesseractOCR shells out to the tesseract and pdftoppm binaries.
type TesseractOCR struct {
	TesseractCmd string
	PdftoppmCmd  string
	Lang         string // e.g. "eng+tam"
}

func NewTesseractOCR(tesseractCmd, pdftoppmCmd, lang string) *TesseractOCR {
	return &TesseractOCR{TesseractCmd: tesseractCmd, PdftoppmCmd: pdftoppmCmd, Lang: lang}
}

// RecognizeImage pipes the image through tesseract on stdin.
func (t *TesseractOCR) RecognizeImage(ctx context.Context, data []byte, _ string) (string, error) {
	cmd := exec.CommandContext(ctx, t.TesseractCmd, "stdin", "stdout", "-l", t.Lang) // #nosec G204
	cmd.Stdin = bytes.NewReader(data)
	return run(cmd)
}

// RecognizePDF rasterizes each page with pdftoppm and recognizes the pages in order.
func (t *TesseractOCR) RecognizePDF(ctx context.Context, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return "", err
	}
	raster := exec.CommandContext(ctx, t.PdftoppmCmd, "-r", pdfRasterDPI, "-png", input, filepath.Join(dir, "page")) // #nosec G204
	if _, err := run(raster); err != nil {
		return "", fmt.Errorf("rasterize pdf: %w", err)
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page*.png"))
	if err != nil {
		return "", err
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(pages)

	var texts []string
	for _, page := range pages {
		cmd := exec.CommandContext(ctx, t.TesseractCmd, page, "stdout", "-l", t.Lang) // #nosec G204
		text, err := run(cmd)
		if err != nil {
			return "", fmt.Errorf("%s: %w", filepath.Base(page), err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

func run(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", filepath.Base(cmd.Path), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
