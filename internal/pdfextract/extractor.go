// Package pdfextract turns raw PDF bytes into cleaned plain text, with
// structured failure kinds so the upload handler can prompt the user for a
// password without a job ever being enqueued.
package pdfextract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/ledongthuc/pdf"
)

// FailureKind classifies why extraction did not produce text.
type FailureKind string

const (
	// FailureNeedsPassword means the document is encrypted and no password
	// was supplied.
	FailureNeedsPassword FailureKind = "needs_password"
	// FailureIncorrectPassword means the supplied password did not open the
	// document.
	FailureIncorrectPassword FailureKind = "incorrect_password"
	// FailureUnreadable means the bytes are not a usable PDF or extraction
	// produced no text.
	FailureUnreadable FailureKind = "unreadable"
	// FailureToolUnavailable means the system text-extraction tool is missing.
	FailureToolUnavailable FailureKind = "tool_unavailable"
)

// Result is the outcome of an extraction attempt. Exactly one of Text
// (Success=true) or Failure (Success=false) is meaningful.
type Result struct {
	Success bool
	Text    string
	Failure FailureKind
}

func failure(kind FailureKind) Result {
	return Result{Failure: kind}
}

var pdfMagic = []byte("%PDF-")

// runPDFToText is held in a variable so tests can substitute the subprocess.
var runPDFToText = runPDFToTextImpl

// Extract produces cleaned plain text from raw PDF bytes. The password may be
// empty. Encryption is probed structurally before any extraction effort is
// spent, and password validation is separate from extraction so the three
// outcomes (needs password / incorrect password / accepted) stay distinct.
func Extract(ctx context.Context, data []byte, password string) Result {
	if !bytes.HasPrefix(data, pdfMagic) {
		return failure(FailureUnreadable)
	}

	reader := bytes.NewReader(data)
	size := int64(len(data))

	if _, err := pdf.NewReader(reader, size); err != nil {
		if err != pdf.ErrInvalidPassword {
			return failure(FailureUnreadable)
		}
		// Encrypted document.
		if password == "" {
			return failure(FailureNeedsPassword)
		}
		if !passwordAccepted(reader, size, password) {
			return failure(FailureIncorrectPassword)
		}
	}

	raw, err := runPDFToText(ctx, data, password)
	if err != nil {
		if _, lookErr := exec.LookPath("pdftotext"); lookErr != nil {
			return failure(FailureToolUnavailable)
		}
		return failure(FailureUnreadable)
	}

	text := CleanText(raw)
	if text == "" {
		return failure(FailureUnreadable)
	}
	return Result{Success: true, Text: text}
}

// passwordAccepted validates the password against the document structure
// without running text extraction.
func passwordAccepted(reader *bytes.Reader, size int64, password string) bool {
	attempts := 0
	_, err := pdf.NewReaderEncrypted(reader, size, func() string {
		// The reader keeps asking until it gets an empty string; offer the
		// password exactly once.
		if attempts > 0 {
			return ""
		}
		attempts++
		return password
	})
	return err == nil
}

// runPDFToTextImpl shells out to pdftotext with layout preserved, reading the
// result from stdout.
func runPDFToTextImpl(ctx context.Context, data []byte, password string) (string, error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", fmt.Errorf("runPDFToText: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("runPDFToText: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("runPDFToText: close temp file: %w", err)
	}

	args := []string{"-layout", "-enc", "UTF-8"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, tmp.Name(), "-")

	cmd := exec.CommandContext(ctx, "pdftotext", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("runPDFToText: pdftotext: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
