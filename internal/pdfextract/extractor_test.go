package pdfextract

import (
	"context"
	"crypto/md5"
	"crypto/rc4"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExtract_RejectsNonPDFBytes(t *testing.T) {
	// The magic-number check must fail fast: the subprocess must never run.
	called := false
	orig := runPDFToText
	runPDFToText = func(ctx context.Context, data []byte, password string) (string, error) {
		called = true
		return "", errors.New("should not be reached")
	}
	defer func() { runPDFToText = orig }()

	res := Extract(context.Background(), []byte("this is not a pdf"), "")
	if res.Success {
		t.Fatal("expected failure for non-PDF bytes")
	}
	if res.Failure != FailureUnreadable {
		t.Errorf("Failure = %q, want %q", res.Failure, FailureUnreadable)
	}
	if called {
		t.Error("extraction subprocess ran for non-PDF input")
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	res := Extract(context.Background(), nil, "")
	if res.Success || res.Failure != FailureUnreadable {
		t.Errorf("Extract(nil) = %+v, want unreadable failure", res)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "trims and collapses spaces",
			raw:  "  UBER   TRIP\t\t123  \nSTARBUCKS    LIMA",
			want: "UBER TRIP 123\nSTARBUCKS LIMA",
		},
		{
			name: "caps blank runs at two",
			raw:  "a\n\n\n\n\n\nb",
			want: "a\n\n\nb",
		},
		{
			name: "drops separator runs",
			raw:  "TOTAL ---------------- 195.50\n....\nOK",
			want: "TOTAL 195.50\n\nOK",
		},
		{
			name: "keeps short punctuation",
			raw:  "NETFLIX.COM - PAGO",
			want: "NETFLIX.COM - PAGO",
		},
		{
			name: "strips control characters",
			raw:  "PAGO\x00\x07 LUZ\x1b DEL SUR",
			want: "PAGO LUZ DEL SUR",
		},
		{
			name: "empty after cleaning",
			raw:  "   \n\n ==== \n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.raw); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtract_UnreadableWhenNoText(t *testing.T) {
	orig := runPDFToText
	runPDFToText = func(ctx context.Context, data []byte, password string) (string, error) {
		return "  \n\n  ", nil
	}
	defer func() { runPDFToText = orig }()

	res := Extract(context.Background(), minimalPDF(), "")
	if res.Success {
		t.Fatal("expected failure for empty extraction output")
	}
	if res.Failure != FailureUnreadable {
		t.Errorf("Failure = %q, want %q", res.Failure, FailureUnreadable)
	}
}

func TestExtract_SuccessCleansOutput(t *testing.T) {
	orig := runPDFToText
	runPDFToText = func(ctx context.Context, data []byte, password string) (string, error) {
		return "  ESTADO DE CUENTA  \n\n\n\n01/15   COMPRA   MAKRO\n", nil
	}
	defer func() { runPDFToText = orig }()

	res := Extract(context.Background(), minimalPDF(), "")
	if !res.Success {
		t.Fatalf("expected success, got failure %q", res.Failure)
	}
	if !strings.Contains(res.Text, "01/15 COMPRA MAKRO") {
		t.Errorf("unexpected cleaned text: %q", res.Text)
	}
}

func TestExtract_EncryptedPDF(t *testing.T) {
	const password = "cl4ve-bcp"
	doc := encryptedPDF(password)

	subprocessRan := false
	orig := runPDFToText
	runPDFToText = func(ctx context.Context, data []byte, pw string) (string, error) {
		subprocessRan = true
		return "01/15 MAKRO LIMA 195.50\n", nil
	}
	defer func() { runPDFToText = orig }()

	t.Run("no password", func(t *testing.T) {
		subprocessRan = false
		res := Extract(context.Background(), doc, "")
		if res.Success || res.Failure != FailureNeedsPassword {
			t.Errorf("Extract = %+v, want %q failure", res, FailureNeedsPassword)
		}
		if subprocessRan {
			t.Error("extraction subprocess ran without a password")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		subprocessRan = false
		res := Extract(context.Background(), doc, "not-the-password")
		if res.Success || res.Failure != FailureIncorrectPassword {
			t.Errorf("Extract = %+v, want %q failure", res, FailureIncorrectPassword)
		}
		if subprocessRan {
			t.Error("extraction subprocess ran with a rejected password")
		}
	})

	t.Run("correct password", func(t *testing.T) {
		subprocessRan = false
		res := Extract(context.Background(), doc, password)
		if !res.Success {
			t.Fatalf("expected success, got failure %q", res.Failure)
		}
		if !strings.Contains(res.Text, "MAKRO LIMA") {
			t.Errorf("unexpected text: %q", res.Text)
		}
		if !subprocessRan {
			t.Error("extraction subprocess did not run")
		}
	})
}

// assemblePDF lays out numbered objects, the xref table, and the trailer with
// correct byte offsets.
func assemblePDF(objects []string, trailer string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = b.Len()
		b.WriteString(obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return []byte(b.String())
}

var basePDFObjects = []string{
	"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
	"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
	"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n",
}

// minimalPDF builds the smallest structurally loadable PDF: one empty page.
func minimalPDF() []byte {
	return assemblePDF(basePDFObjects, "<< /Size 4 /Root 1 0 R >>")
}

// passwordPad is the padding string of the PDF standard security handler
// (PDF 32000-1:2008, 7.6.3.3).
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56,
	0xFF, 0xFA, 0x01, 0x08, 0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

func padPassword(pw string) []byte {
	b := []byte(pw)
	if len(b) > 32 {
		b = b[:32]
	}
	return append(b, passwordPad[:32-len(b)]...)
}

// encryptedPDF builds the minimal page document protected by the standard
// security handler, revision 2 with a 40-bit RC4 key (7.6.3.4 algorithms
// 2-4). The owner password equals the user password. The document carries no
// strings or streams outside the encryption dictionary, so only the /O and /U
// values need computing.
func encryptedPDF(password string) []byte {
	id := []byte("statement-fixture")[:16]
	perms := uint32(0xFFFFFFFC) // P = -4: all permissions granted

	// Algorithm 3 (R=2): O is the padded user password RC4-encrypted under
	// the first 5 bytes of the owner password hash.
	ownerHash := md5.Sum(padPassword(password))
	oc, _ := rc4.NewCipher(ownerHash[:5])
	o := make([]byte, 32)
	oc.XORKeyStream(o, padPassword(password))

	// Algorithm 2: the 40-bit file key.
	h := md5.New()
	h.Write(padPassword(password))
	h.Write(o)
	h.Write([]byte{byte(perms), byte(perms >> 8), byte(perms >> 16), byte(perms >> 24)})
	h.Write(id)
	key := h.Sum(nil)[:5]

	// Algorithm 4 (R=2): U is the padding string encrypted under the file key.
	uc, _ := rc4.NewCipher(key)
	u := make([]byte, 32)
	uc.XORKeyStream(u, passwordPad)

	objects := append(append([]string{}, basePDFObjects...), fmt.Sprintf(
		"4 0 obj\n<< /Filter /Standard /V 1 /R 2 /Length 40 /P -4 /O <%X> /U <%X> >>\nendobj\n",
		o, u,
	))
	trailer := fmt.Sprintf(
		"<< /Size 5 /Root 1 0 R /Encrypt 4 0 R /ID [<%X> <%X>] >>",
		id, id,
	)
	return assemblePDF(objects, trailer)
}
