package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/lexicon"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

func TestClassifyDefaultRules(t *testing.T) {
	c := New(taxonomy.MustCompileDefault())

	tests := []struct {
		name string
		text string
		want constants.DocumentType
	}{
		{"tugas", "UNIVERSITAS GADJAH MADA\nSURAT TUGAS\nNOMOR: 5/UN1/X/2024", constants.SuratTugas},
		{"permohonan", "Dengan ini kami memohon izin penggunaan ruang", constants.SuratPermohonan},
		{"permohonan mentioning tugas", "Permohonan penerbitan surat tugas", constants.SuratPermohonan},
		{"kuasa", "Yang bertanda tangan selaku pemberi kuasa", constants.SuratKuasa},
		{"keterangan", "Dekan menerangkan bahwa mahasiswa tersebut aktif", constants.SuratKeterangan},
		{"pernyataan", "SURAT PERNYATAAN\nSaya menyatakan dengan sesungguhnya", constants.SuratPernyataan},
		{"berita acara", "BERITA ACARA serah terima", constants.BeritaAcara},
		{"nota dinas", "NOTA DINAS\nHal: undangan rapat", constants.NotaDinas},
		{"keputusan", "KEPUTUSAN REKTOR UNIVERSITAS GADJAH MADA", constants.Keputusan},
		{"unknown", "daftar hadir peserta", constants.Unknown},
		{"empty", "", constants.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := New(taxonomy.MustCompileDefault())
	text := "Surat Kuasa\nmemberi wewenang kepada"
	first := c.Classify(text)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, c.Classify(text))
	}
}

func compileRules(t *testing.T, rules ...taxonomy.ClassRule) *Classifier {
	t.Helper()
	tax := taxonomy.Default()
	tax.Rules = rules
	c, err := taxonomy.Compile(tax)
	require.NoError(t, err)
	return New(c)
}

func TestRuleOrderIsTheTieBreak(t *testing.T) {
	tugas := taxonomy.ClassRule{Type: constants.SuratTugas, Pattern: `surat\s+tugas`}
	permohonan := taxonomy.ClassRule{Type: constants.SuratPermohonan, Pattern: `permohonan`}
	nota := taxonomy.ClassRule{Type: constants.NotaDinas, Pattern: `nota\s+dinas`}
	text := "permohonan surat tugas"

	// Swapping two rules that both match flips the winner.
	require.Equal(t, constants.SuratPermohonan, compileRules(t, permohonan, tugas).Classify(text))
	require.Equal(t, constants.SuratTugas, compileRules(t, tugas, permohonan).Classify(text))

	// Moving a rule that does not match leaves the result alone.
	require.Equal(t, constants.SuratPermohonan, compileRules(t, nota, permohonan, tugas).Classify(text))
	require.Equal(t, constants.SuratPermohonan, compileRules(t, permohonan, nota, tugas).Classify(text))
}

func TestLexiconSecondPass(t *testing.T) {
	tax := taxonomy.MustCompileDefault()
	dict := lexicon.NewMapDictionary(map[string][]string{
		"srat":  {"surat"},
		"tgas":  {"tugas"},
		"mohon": {"tugas"},
	})

	plain := New(tax)
	withLex := New(tax, WithLexicon(dict))

	require.Equal(t, constants.Unknown, plain.Classify("SRAT TGAS"))
	require.Equal(t, constants.SuratTugas, withLex.Classify("SRAT TGAS"))

	// Raw text wins before any canonicalization.
	require.Equal(t, constants.SuratPermohonan, withLex.Classify("mohon surat tugas"))
	require.Equal(t, constants.Unknown, withLex.Classify("daftar hadir"))
}
