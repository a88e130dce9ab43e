package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// IsHTMLPath reports whether the path looks like an HTML chat export.
func IsHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// normalizeHTMLFile reads an HTML chat export and converts it to plain
// markdown text for segmentation. The whole file is materialized, which is
// acceptable because the size check against maxSize has already passed.
// Entity expansion can grow the text, so the converted output is held to
// the same limit. Offsets produced by the parse then refer to the converted
// text, not the HTML source.
func normalizeHTMLFile(path string, maxSize int64) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse file: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("convert html source: %w", err)
	}
	if int64(len(md)) > maxSize {
		return "", fmt.Errorf("%w: %s converts to %d bytes, limit %d", types.ErrFileTooLarge, path, len(md), maxSize)
	}
	return md, nil
}
