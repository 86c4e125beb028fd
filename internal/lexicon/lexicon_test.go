package lexicon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingLookup struct{}

func (failingLookup) LookupCanonicalForms(context.Context, string) ([]string, error) {
	return nil, errors.New("dictionary offline")
}

func TestCanonicalizeWithMap(t *testing.T) {
	d := NewMapDictionary(map[string][]string{
		"Penugasn": {"penugasan"},
		"srt":      {"surat", "sertifikat"},
		"":         {"ignored"},
		"kosong":   {" "},
	})

	got := Canonicalize(context.Background(), d, "SRT tugas: Penugasn, kosong!")
	require.Equal(t, "surat tugas: penugasan, kosong!", got)
}

func TestCanonicalizeIdentityAndNil(t *testing.T) {
	text := "Surat  Tugas\nNo.5/UN1"
	require.Equal(t, text, Canonicalize(context.Background(), Identity{}, text))
	require.Equal(t, text, Canonicalize(context.Background(), nil, text))
}

func TestCanonicalizeLookupErrorsDegradeToIdentity(t *testing.T) {
	text := "surat kuasa"
	require.Equal(t, text, Canonicalize(context.Background(), failingLookup{}, text))
}

func TestLoadMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Mohn: [mohon]\nsrat: [surat]\n"), 0o644))

	d, err := LoadMapFile(path)
	require.NoError(t, err)
	forms, err := d.LookupCanonicalForms(context.Background(), "MOHN")
	require.NoError(t, err)
	require.Equal(t, []string{"mohon"}, forms)
}

func TestSQLiteDictionary(t *testing.T) {
	ctx := context.Background()
	d, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Add(ctx, "Srt", "surat", 1))
	require.NoError(t, d.Add(ctx, "srt", "sertifikat", 2))
	require.NoError(t, d.Add(ctx, "srt", "sertifikat", 0))
	require.Error(t, d.Add(ctx, "", "x", 0))

	forms, err := d.LookupCanonicalForms(ctx, "SRT")
	require.NoError(t, err)
	require.Equal(t, []string{"sertifikat", "surat"}, forms)

	forms, err = d.LookupCanonicalForms(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, forms)

	require.Equal(t, "sertifikat tugas", Canonicalize(ctx, d, "srt tugas"))
}
