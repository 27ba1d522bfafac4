// Package ingestion turns requirement files into cleaned UTF-8 text. Binary
// formats (PDF, DOCX) are decoded by an external converter; this package
// only detects them.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	innerSpace     = regexp.MustCompile(`[ \t\x{3000}]+`)
	excessiveBlank = regexp.MustCompile(`\n\n\n+`)
)

// zero-width characters and the byte order mark
var invisible = strings.NewReplacer("\uFEFF", "", "\u200B", "", "\u200C", "", "\u200D", "")

// Source is a decoded input document
type Source struct {
	Text     string
	Metadata *Metadata
}

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// 1. Normalize line endings (CRLF → LF) and drop invisible characters
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = invisible.Replace(content)

	// 2. Clean each line
	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	// 3. Join, reduce blank runs to one empty line, trim
	result := strings.Join(cleanedLines, "\n")
	result = excessiveBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t\u3000")
	trimmed := strings.TrimLeft(line, " \t\u3000")
	if trimmed == "" {
		return ""
	}

	// Headings start at column 0 so the section splitter sees them
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	// Preserve bullet lists (Markdown - or *) with their indentation
	if isBulletLine(trimmed) {
		if indent := len(line) - len(trimmed); indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	// Regular lines lose leading indentation and collapse inner runs of
	// spaces, including ideographic spaces
	return innerSpace.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}

// Decode converts raw file bytes to a cleaned Source. Only plain text and
// Markdown are decoded here.
func Decode(data []byte, fileName, mimeType string) (*Source, error) {
	fileType := DetectFileType(fileName, mimeType)
	switch fileType {
	case FileTypeText, FileTypeMarkdown:
	case FileTypePDF, FileTypeDOCX:
		return nil, &UnsupportedTypeError{FileName: fileName, FileType: fileType, Reason: "binary format needs an external converter"}
	default:
		return nil, &UnsupportedTypeError{FileName: fileName, FileType: fileType, Reason: "unrecognized extension and MIME type"}
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8", fileName)
	}

	text := CleanText(string(data))
	if mimeType == "" {
		mimeType = fileType.MimeType()
	}
	return &Source{
		Text:     text,
		Metadata: NewMetadata(text, fileName, fileType, mimeType),
	}, nil
}

// ReadFile reads a text or Markdown file and cleans it
func ReadFile(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(content, filepath.Base(path), "")
}
