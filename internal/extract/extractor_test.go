package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/segment"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	return New(taxonomy.MustCompileDefault(), nil)
}

// requireSpan checks that Start/Length point at Text inside source.
func requireSpan(t *testing.T, source string, m FieldMatch) {
	t.Helper()
	runes := []rune(source)
	require.LessOrEqual(t, m.Start+m.Length, len(runes))
	require.Equal(t, m.Text, string(runes[m.Start:m.Start+m.Length]))
}

func TestSuratTugasNomor(t *testing.T) {
	text := "Universitas Gadjah Mada ... SURAT TUGAS ... NOMOR: 5/UN1/X/2024\nisi penugasan ... mestinya."
	fields := newExtractor(t).ExtractFields(text, constants.SuratTugas)

	nomor, ok := fields[constants.FieldNomorSurat]
	require.True(t, ok)
	require.Equal(t, "5/UN1/X/2024", nomor.Text)
	requireSpan(t, text, nomor)
}

func TestSuratTugasStrictNomorWins(t *testing.T) {
	text := "NOMOR: lampiran\nRef 1234/UN1/P.3/KP/SK/2023 tertanggal"
	fields := newExtractor(t).ExtractFields(text, constants.SuratTugas)
	require.Equal(t, "1234/UN1/P.3/KP/SK/2023", fields[constants.FieldNomorSurat].Text)
}

func TestOffsetsAreCodePoints(t *testing.T) {
	text := "Perihal Ü\nNOMOR:  123/UN1/2024\n"
	fields := newExtractor(t).ExtractFields(text, constants.Unknown)

	nomor := fields[constants.FieldNomorSurat]
	require.Equal(t, FieldMatch{Text: "123/UN1/2024", Start: 18, Length: 12}, nomor)
	requireSpan(t, text, nomor)
}

func TestAbsentFieldHasNoKey(t *testing.T) {
	fields := newExtractor(t).ExtractFields("daftar hadir rapat", constants.SuratTugas)
	_, ok := fields[constants.FieldNomorSurat]
	require.False(t, ok)
	require.Empty(t, fields)
	require.NotNil(t, fields)
}

func TestDateUsesSecondGroup(t *testing.T) {
	text := "Hal: Undangan\nYogyakarta, 12 Maret 2024"
	fields := newExtractor(t).ExtractFields(text, constants.SuratPermohonan)

	require.Equal(t, "12 Maret 2024", fields[constants.FieldTanggalSurat].Text)
	require.Equal(t, "Undangan", fields[constants.FieldPerihal].Text)
	requireSpan(t, text, fields[constants.FieldTanggalSurat])
	requireSpan(t, text, fields[constants.FieldPerihal])
}

func TestSignatureJoinsGroups(t *testing.T) {
	text := "Yang bertanda tangan di bawah ini menugaskan Budi untuk hadir sebagaimana mestinya.\n" +
		"Dekan,\nProf. Dr. Budi Santoso\nNIP. 197001011995031001"
	fields := newExtractor(t).ExtractFields(text, constants.SuratTugas)

	ttd := fields[constants.FieldTTDSurat]
	require.Equal(t, "Dekan Prof. Dr. Budi Santoso 197001011995031001", ttd.Text)
	require.Equal(t, strings.Index(text, "Dekan,"), ttd.Start)
	require.Equal(t, len([]rune(ttd.Text)), ttd.Length)

	isi := fields[constants.FieldIsiSurat]
	require.Equal(t, "Yang bertanda tangan di bawah ini menugaskan Budi untuk hadir sebagaimana", isi.Text)
	requireSpan(t, text, isi)
}

func TestMultiLineBody(t *testing.T) {
	text := "SURAT KETERANGAN\nDekan menerangkan bahwa\nBudi adalah mahasiswa aktif.\nDemikian surat ini."
	fields := newExtractor(t).ExtractFields(text, constants.SuratKeterangan)
	require.Equal(t, "menerangkan bahwa\nBudi adalah mahasiswa aktif.", fields[constants.FieldIsiSurat].Text)
}

func TestUnknownTypeUsesDefaultGrammar(t *testing.T) {
	text := "Asal: Fakultas Hukum\nNOMOR: 77/X"
	e := newExtractor(t)

	for _, dt := range []constants.DocumentType{constants.Unknown, constants.DocumentType("Memo")} {
		fields := e.ExtractFields(text, dt)
		require.Equal(t, "Fakultas Hukum", fields[constants.FieldPengirim].Text)
		require.Equal(t, "77/X", fields[constants.FieldNomorSurat].Text)
	}
}

func TestFieldNamesAreDeclared(t *testing.T) {
	c := taxonomy.MustCompileDefault()
	e := New(c, nil)
	text := "NOMOR: 1/UN1/A/B/C/2024\nDari: Kantor\nKepada: Rektor\nKepada Yth. Dekan\nHal: Izin\n" +
		"Yogyakarta, 1 Mei 2024\nYang bertanda tangan Nama : Ani\nmemberi kuasa kepada Nama : Budi\n" +
		"Untuk dan atas nama saya\nmenerangkan bahwa x Demikian\nPada hari ini y Demikian\nTENTANG Tata Tertib\n" +
		"Rektor, Ani NIP 1 mestinya."

	for _, dt := range constants.AllDocumentTypes() {
		declared := map[string]bool{}
		for _, f := range c.GrammarFor(dt).Fields {
			declared[f.Name] = true
		}
		for name, m := range e.ExtractFields(text, dt) {
			require.True(t, declared[name], "%s: undeclared field %s", dt, name)
			require.NotEmpty(t, m.Text)
			if name != constants.FieldTTDSurat {
				requireSpan(t, text, m)
			}
		}
	}
}

func TestMultiGroupFieldOffsets(t *testing.T) {
	text := "Hormat kami,\nRektor,   Ani Setyawati NIP 19700101"
	fields := newExtractor(t).ExtractFields(text, constants.SuratTugas)

	ttd, ok := fields[constants.FieldTTDSurat]
	require.True(t, ok)
	require.Equal(t, "Rektor Ani Setyawati 19700101", ttd.Text)
	require.Equal(t, len([]rune("Hormat kami,\n")), ttd.Start)
	require.Equal(t, len([]rune(ttd.Text)), ttd.Length)

	// The joined value is not a substring of the letter.
	runes := []rune(text)
	require.True(t, strings.HasPrefix(string(runes[ttd.Start:]), "Rektor"))
	require.NotEqual(t, ttd.Text, string(runes[ttd.Start:ttd.Start+ttd.Length]))
}

func TestEmptyCaptureFallsThrough(t *testing.T) {
	tax := taxonomy.Default()
	tax.Default = taxonomy.Grammar{Fields: []taxonomy.FieldRule{{
		Name: "kode",
		Alternatives: []taxonomy.Pattern{
			{Expr: `kode(\s*)`},
			{Expr: `kode\s*(\w+)`},
		},
	}}}
	c, err := taxonomy.Compile(tax)
	require.NoError(t, err)

	fields := New(c, nil).ExtractFields("kode   AB12", constants.Unknown)
	require.Equal(t, FieldMatch{Text: "AB12", Start: 7, Length: 4}, fields["kode"])
}

func TestGroupZeroAndUnmatchedGroups(t *testing.T) {
	tax := taxonomy.Default()
	tax.Default = taxonomy.Grammar{Fields: []taxonomy.FieldRule{
		{Name: "whole", Alternatives: []taxonomy.Pattern{{Expr: `\d+/\d+`, Groups: []int{0}}}},
		{Name: "joined", Alternatives: []taxonomy.Pattern{{Expr: `(a)(x)?(b)`, Groups: []int{1, 2, 3}, Join: "-"}}},
		{Name: "missing", Alternatives: []taxonomy.Pattern{{Expr: `(a)`, Groups: []int{9}}}},
	}}
	c, err := taxonomy.Compile(tax)
	require.NoError(t, err)

	fields := New(c, nil).ExtractFields("ref 12/34 ab", constants.Unknown)
	require.Equal(t, FieldMatch{Text: "12/34", Start: 4, Length: 5}, fields["whole"])
	require.Equal(t, FieldMatch{Text: "a-b", Start: 10, Length: 3}, fields["joined"])
	_, ok := fields["missing"]
	require.False(t, ok)
}

func TestMatchTimeoutIsAbsorbed(t *testing.T) {
	tax := taxonomy.Default()
	tax.MatchTimeout = 20 * time.Millisecond
	tax.Default = taxonomy.Grammar{Fields: []taxonomy.FieldRule{
		{Name: "slow", Alternatives: []taxonomy.Pattern{{Expr: `^((a+)+)$`}}},
		{Name: "fast", Alternatives: []taxonomy.Pattern{{Expr: `(b)`}}},
	}}
	c, err := taxonomy.Compile(tax)
	require.NoError(t, err)

	fields := New(c, nil).ExtractFields(strings.Repeat("a", 40)+"!b", constants.Unknown)
	_, ok := fields["slow"]
	require.False(t, ok)
	require.Equal(t, "b", fields["fast"].Text)
}

func TestEmptyText(t *testing.T) {
	fields := newExtractor(t).ExtractFields("", constants.SuratTugas)
	require.NotNil(t, fields)
	require.Empty(t, fields)
}

type stubPages struct{ calls int }

func (s *stubPages) Pages(_ context.Context, path string) ([]segment.Page, error) {
	s.calls++
	return []segment.Page{{Number: 1, Text: path}}, nil
}

func TestOCRAdapterRoutesPageDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_2.txt"), []byte("dua"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_1.txt"), []byte("satu"), 0o644))
	file := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	stub := &stubPages{}
	a := NewOCRAdapter(stub, nil)

	pages, err := a.Pages(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []segment.Page{{Number: 1, Text: "satu"}, {Number: 2, Text: "dua"}}, pages)
	require.Zero(t, stub.calls)

	pages, err = a.Pages(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, file, pages[0].Text)
	require.Equal(t, 1, stub.calls)

	_, err = a.Pages(context.Background(), t.TempDir())
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = a.Pages(context.Background(), filepath.Join(dir, "missing.pdf"))
	require.ErrorIs(t, err, common.ErrNotFound)
}
