package ocr_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/ocr"
)

// stubRunner fakes pdftotext, pdftoppm and tesseract.
type stubRunner struct {
	mu        sync.Mutex
	calls     []string
	pdftotext string
	pages     int
	pageText  map[string]string // png basename -> text
	imageText string
	fail      map[string]bool
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))
	s.mu.Unlock()
	if s.fail[name] {
		return nil, []byte(name + " exploded"), errors.New("exit status 1")
	}
	switch name {
	case "pdftotext":
		return []byte(s.pdftotext), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= s.pages; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('0'+i))+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if t, ok := s.pageText[filepath.Base(args[0])]; ok {
			return []byte(t), nil, nil
		}
		return []byte(s.imageText), nil, nil
	}
	return nil, nil, errors.New("unknown command " + name)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestExtract_ScannedPDFFallsBackToOCR(t *testing.T) {
	r := &stubRunner{
		pages: 2,
		pageText: map[string]string{
			"page-1.png": "PU 1\nWaverly NY 14892\n",
			"page-2.png": "SO 2\n-----\nHiram OH 44234\n",
		},
	}
	e := ocr.NewExtractorWithRunner(ocr.Config{}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "scan.pdf", "not really a pdf"))

	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "PU 1\nWaverly NY 14892\n\nSO 2\n\nHiram OH 44234", res.Text)
	assert.NotEmpty(t, res.Warnings)
	assert.Contains(t, r.calls[len(r.calls)-1], "--psm 6")
}

func TestExtract_PdftotextUsedWhenItHasText(t *testing.T) {
	r := &stubRunner{pdftotext: "Invoice Date: 03/10/2023\fAmount Due: $1,200.00\f"}
	e := ocr.NewExtractorWithRunner(ocr.Config{}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "text.pdf", "garbage"))

	require.NoError(t, err)
	assert.Equal(t, "pdftotext", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Invoice Date: 03/10/2023\n\nAmount Due: $1,200.00", res.Text)
	for _, c := range r.calls {
		assert.NotContains(t, c, "pdftoppm")
	}
}

func TestExtract_OCRFailure(t *testing.T) {
	r := &stubRunner{fail: map[string]bool{"pdftotext": true, "pdftoppm": true}}
	e := ocr.NewExtractorWithRunner(ocr.Config{}, r, nil)

	_, err := e.Extract(context.Background(), writeFile(t, "bad.pdf", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCR failed")
}

func TestExtract_Image(t *testing.T) {
	r := &stubRunner{imageText: "Detention:\t$150\r\n\r\n\r\n\r\nLumper:   $75  "}
	e := ocr.NewExtractorWithRunner(ocr.Config{TessdataDir: "/usr/share/tessdata"}, r, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "photo.JPG", "jpeg"))

	require.NoError(t, err)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, "Detention: $150\n\nLumper: $75", res.Text)
	require.Len(t, r.calls, 1)
	assert.Contains(t, r.calls[0], "--tessdata-dir /usr/share/tessdata")
}

func TestExtract_PlainText(t *testing.T) {
	e := ocr.NewExtractorWithRunner(ocr.Config{}, &stubRunner{}, nil)

	res, err := e.Extract(context.Background(), writeFile(t, "note.txt", "Rate per mile: $2.10\r\n"))

	require.NoError(t, err)
	assert.Equal(t, constants.TXT, res.SourceType)
	assert.Equal(t, "Rate per mile: $2.10", res.Text)
}

func TestExtract_Unsupported(t *testing.T) {
	e := ocr.NewExtractorWithRunner(ocr.Config{}, &stubRunner{}, nil)
	_, err := e.Extract(context.Background(), "invoice.docx")
	assert.ErrorIs(t, err, ocr.ErrUnsupported)
}

func TestNormalize_KeepsDigits(t *testing.T) {
	assert.Equal(t, "PU 03/05/23", ocr.Normalize("PU   03/05/23  "))
}
