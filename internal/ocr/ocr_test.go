package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// fakeRunner emulates pdftoppm by writing the configured page images and
// tesseract by echoing a per-image text.
type fakeRunner struct {
	images  []string
	texts   map[string]string
	failOn  string
	calls   []string
	failPPM bool
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	switch name {
	case "pdftoppm":
		if f.failPPM {
			return nil, []byte("Syntax Error"), errors.New("exit status 1")
		}
		prefix := args[len(args)-1]
		for _, img := range f.images {
			if err := os.WriteFile(prefix+"-"+img+".png", []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		base := filepath.Base(args[0])
		if base == f.failOn {
			return nil, []byte("read error"), errors.New("exit status 1")
		}
		return []byte(f.texts[base]), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected command %s", name)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPDFPagesInNumericOrder(t *testing.T) {
	r := &fakeRunner{
		images: []string{"10", "2", "1"},
		texts: map[string]string{
			"page-1.png":  "SURAT TUGAS\r\n",
			"page-2.png":  "isi\t\tpenugasan",
			"page-10.png": "halaman sepuluh",
		},
	}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	pages, err := e.Pages(context.Background(), writeFile(t, "scan.pdf", "not really a pdf"))
	require.NoError(t, err)
	require.Equal(t, []segment.Page{
		{Number: 1, Text: "SURAT TUGAS"},
		{Number: 2, Text: "isi penugasan"},
		{Number: 10, Text: "halaman sepuluh"},
	}, pages)
	require.Contains(t, r.calls[0], "pdftoppm -r 300 -png")
	require.Contains(t, r.calls[1], "-l ind")
}

func TestPDFFailedPageStaysInPlace(t *testing.T) {
	r := &fakeRunner{
		images: []string{"1", "2"},
		texts:  map[string]string{"page-1.png": "satu", "page-2.png": "dua"},
		failOn: "page-1.png",
	}
	e := NewExtractor(Config{MaxPages: 5, TesseractLang: "ind+eng"}, nil, WithRunner(r))

	pages, err := e.Pages(context.Background(), writeFile(t, "scan.pdf", "x"))
	require.NoError(t, err)
	require.Equal(t, []segment.Page{{Number: 1, Text: ""}, {Number: 2, Text: "dua"}}, pages)
	require.Contains(t, r.calls[0], "-l 5")
}

func TestPDFRasterizeFailure(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{failPPM: true}))
	_, err := e.Pages(context.Background(), writeFile(t, "scan.pdf", "x"))
	require.ErrorIs(t, err, common.ErrOCR)
	require.Equal(t, 500, common.HTTPStatus(err))
}

func TestPDFNoImages(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))
	_, err := e.Pages(context.Background(), writeFile(t, "scan.pdf", "x"))
	require.ErrorIs(t, err, common.ErrOCR)
}

func TestImageIsSinglePage(t *testing.T) {
	r := &fakeRunner{texts: map[string]string{"letter.png": "Kepada Yth.\n\n\n\nDekan"}}
	e := NewExtractor(Config{TessdataDir: "/opt/tessdata"}, nil, WithRunner(r))

	pages, err := e.Pages(context.Background(), writeFile(t, "letter.png", "png"))
	require.NoError(t, err)
	require.Equal(t, []segment.Page{{Number: 1, Text: "Kepada Yth.\n\nDekan"}}, pages)
	require.Contains(t, r.calls[0], "--tessdata-dir /opt/tessdata")
}

func TestTextSplitsOnFormFeed(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))
	pages, err := e.Pages(context.Background(), writeFile(t, "dump.txt", "satu\fdua \f\ftiga\f"))
	require.NoError(t, err)
	require.Equal(t, []segment.Page{
		{Number: 1, Text: "satu"},
		{Number: 2, Text: "dua"},
		{Number: 3, Text: ""},
		{Number: 4, Text: "tiga"},
	}, pages)
}

func TestUnsupportedExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))
	_, err := e.Pages(context.Background(), "letter.docx")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "a b c\n\nd", Normalize("a\t\tb  c\r\n\n\n\n----\nd "))
	require.Equal(t, "05 Maret 2024", Normalize("05 Maret 2024"))
	require.Equal(t, "", Normalize(""))
}
