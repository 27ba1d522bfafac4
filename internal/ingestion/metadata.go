package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// FileType is the detected format of an input file
type FileType string

// Known file types
const (
	FileTypeDOCX     FileType = "docx"
	FileTypePDF      FileType = "pdf"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "md"
	FileTypeUnknown  FileType = "unknown"
)

var mimeTypes = map[FileType]string{
	FileTypeDOCX:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypePDF:      "application/pdf",
	FileTypeText:     "text/plain",
	FileTypeMarkdown: "text/markdown",
}

// MimeType returns the canonical MIME type, or "" for unknown files
func (t FileType) MimeType() string {
	return mimeTypes[t]
}

// DetectFileType detects the file type from the extension first, then the
// declared MIME type.
func DetectFileType(fileName, mimeType string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	mimeType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))

	switch {
	case ext == "docx" || mimeType == mimeTypes[FileTypeDOCX]:
		return FileTypeDOCX
	case ext == "pdf" || mimeType == mimeTypes[FileTypePDF]:
		return FileTypePDF
	case ext == "txt" || mimeType == mimeTypes[FileTypeText]:
		return FileTypeText
	case ext == "md" || ext == "markdown" || mimeType == mimeTypes[FileTypeMarkdown]:
		return FileTypeMarkdown
	}
	return FileTypeUnknown
}

// UnsupportedTypeError is returned for files this package cannot decode
type UnsupportedTypeError struct {
	FileName string
	FileType FileType
	Reason   string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q for %s: %s", e.FileType, e.FileName, e.Reason)
}

// Metadata contains metadata about an ingested document
type Metadata struct {
	FileName  string   `json:"file_name"`
	FileType  FileType `json:"file_type"`
	MimeType  string   `json:"mime_type,omitempty"`
	Timestamp string   `json:"timestamp"` // RFC3339 format
	Hash      string   `json:"hash"`      // SHA256 hex digest of the cleaned text
	WordCount int      `json:"word_count"`
	CharCount int      `json:"char_count"` // runes
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content, fileName string, fileType FileType, mimeType string) *Metadata {
	return &Metadata{
		FileName:  fileName,
		FileType:  fileType,
		MimeType:  mimeType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		WordCount: len(strings.Fields(content)),
		CharCount: utf8.RuneCountInString(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
