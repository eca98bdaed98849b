package storage

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxResumeTextRunes caps the extracted text kept for advisory prompts.
const MaxResumeTextRunes = 8000

// ExtractText returns the plain text of a PDF document, whitespace-collapsed and
// truncated to MaxResumeTextRunes.
func ExtractText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	collapsed := strings.Join(strings.Fields(string(raw)), " ")
	if runes := []rune(collapsed); len(runes) > MaxResumeTextRunes {
		collapsed = string(runes[:MaxResumeTextRunes])
	}
	return collapsed, nil
}
