package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriscorrea/workbench/internal/llm/common"
)

// MaxAttachmentSize is the largest file accepted as an attachment (10MB)
const MaxAttachmentSize = 10 * 1024 * 1024

// StdinName names the attachment built from piped input
const StdinName = "stdin"

// IsPiped reports whether f carries piped or redirected data rather than a terminal
func IsPiped(f *os.File) bool {
	if f == nil {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// ReadAttachments collects attachments for a dispatch
// the order is: piped stdin, then files in the order given
// blank content is skipped; trailing whitespace is trimmed
func ReadAttachments(stdin *os.File, files []string) ([]common.Attachment, error) {
	var attachments []common.Attachment

	// 1: read from stdin if it is a pipe
	if IsPiped(stdin) {
		content, err := readLimited(stdin, StdinName)
		if err != nil {
			return nil, err
		}
		if content != "" {
			attachments = append(attachments, common.Attachment{Name: StdinName, Content: content})
		}
	}

	// 2: read each attached file
	for _, path := range files {
		if path == "" {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %q: %w", path, err)
		}
		content, err := readLimited(f, path)
		f.Close()
		if err != nil {
			return nil, err
		}

		if content != "" {
			attachments = append(attachments, common.Attachment{Name: filepath.Base(path), Content: content})
		}
	}

	return attachments, nil
}

func readLimited(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAttachmentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read attachment %q: %w", name, err)
	}
	if len(data) > MaxAttachmentSize {
		return "", fmt.Errorf("attachment %q exceeds the %d MB limit", name, MaxAttachmentSize/(1024*1024))
	}
	return strings.TrimRight(string(data), "\r\n\t "), nil
}
