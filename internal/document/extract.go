// Package document turns uploaded note files into plain text.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrUnsupportedType = errors.New("only PDF and TXT files are supported")
	ErrEmptyDocument   = errors.New("document contains no text")
)

// Kind is the lower-cased extension of a supported file.
type Kind string

const (
	KindPDF Kind = ".pdf"
	KindTXT Kind = ".txt"
)

// KindOf resolves the file kind from its name.
func KindOf(fileName string) (Kind, error) {
	switch Kind(strings.ToLower(filepath.Ext(fileName))) {
	case KindPDF:
		return KindPDF, nil
	case KindTXT:
		return KindTXT, nil
	default:
		return "", ErrUnsupportedType
	}
}

// ExtractText returns the text of a PDF or TXT file.
func ExtractText(fileName string, data []byte) (string, error) {
	kind, err := KindOf(fileName)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindTXT:
		text, err = DecodeText(data)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

// DecodeText reads UTF-8 and falls back to Latin-1 for anything else.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}
