package taxonomy

import (
	"github.com/joseph-ayodele/letterscan/constants"
)

// Shared field rules. Date-like fields select group 2 to skip the label
// group; signatures join title, name and NIP.
var (
	nomorRule = FieldRule{
		Name: constants.FieldNomorSurat,
		Alternatives: []Pattern{
			{Expr: `NOMOR\s*:\s*(\S+)`},
			{Expr: `(?<![\p{L}\p{N}_])No\.\s*:?\s*(\S+)`},
		},
	}
	tanggalRule = FieldRule{
		Name: constants.FieldTanggalSurat,
		Alternatives: []Pattern{
			{Expr: `\b(Yogyakarta|Tanggal)\s*[,:]?\s*(\d{1,2}\s+\p{L}+\s+\d{4})`, Groups: []int{2}},
		},
	}
	perihalRule = FieldRule{
		Name: constants.FieldPerihal,
		Alternatives: []Pattern{
			{Expr: `\b(Hal|Perihal)\s*:\s*([^\n]+)`, Groups: []int{2}},
		},
	}
	ttdRule = FieldRule{
		Name: constants.FieldTTDSurat,
		Alternatives: []Pattern{
			{Expr: `\b(Ketua|Dekan|Rektor|Direktur|Kepala)\b[\s,]*([\w\s.,\-]+?)\s*NIP\.?\s*:?\s*(\d+)`, Groups: []int{1, 2, 3}},
		},
	}
	penerimaRule = FieldRule{
		Name: constants.FieldPenerimaSurat,
		Alternatives: []Pattern{
			{Expr: `\bKepada\s+Yth\.?\s*:?\s*([^\n]+)`},
		},
	}
)

// Default returns the built-in Universitas Gadjah Mada taxonomy.
func Default() Taxonomy {
	return Taxonomy{
		Name: "ugm",
		Boundary: BoundaryKeywords{
			Titles: []string{
				"Surat Pernyataan",
				"Surat Kuasa",
				"Surat Tugas",
				"Surat Keterangan",
				"Berita Acara",
				"Nota Dinas",
				"Permohonan",
				"Keputusan",
			},
			Salutations: []string{"Yth.", "Kepada"},
			Regulatory:  []string{"Keputusan tentang", "No."},
		},
		Letterhead: Letterhead{
			Signatures: []string{"Universitas Gadjah Mada"},
			Window:     DefaultLetterheadWindow,
		},
		// Order matters: a permohonan quoting "surat tugas" must stay a permohonan.
		Rules: []ClassRule{
			{Type: constants.SuratPermohonan, Pattern: `\b(permohonan|memohon|mohon|bersedia\s+untuk)\b`},
			{Type: constants.SuratTugas, Pattern: `\b(surat\s+tugas|memberikan\s+tugas|menugaskan|kepada\s+yang\s+bersangkutan)\b`},
			{Type: constants.SuratKuasa, Pattern: `\b(surat\s+kuasa|memberi\s+wewenang|pemberi\s+kuasa|penerima\s+kuasa)\b`},
			{Type: constants.SuratKeterangan, Pattern: `\b(surat\s+keterangan|menerangkan\s+bahwa)\b`},
			{Type: constants.SuratPernyataan, Pattern: `\b(surat\s+pernyataan|menyatakan\s+dengan\s+sesungguhnya)\b`},
			{Type: constants.BeritaAcara, Pattern: `\b(berita\s+acara|rangkaian\s+acara)\b`},
			{Type: constants.NotaDinas, Pattern: `\b(nota\s+dinas|hormat\s+saya)\b|\bhal\s*:`},
			{Type: constants.Keputusan, Pattern: `\b(keputusan\s+(rektor|dekan|direktur|kepala)|memutuskan|menetapkan)\b`},
		},
		Grammars: []Grammar{
			{
				Type: constants.SuratPermohonan,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldPengirim, Alternatives: []Pattern{{Expr: `\bDari\s*:\s*([^\n]+)`}}},
					{Name: constants.FieldTujuan, Alternatives: []Pattern{
						{Expr: `\bKepada\s*:\s*([^\n]+)`},
						{Expr: `\bKepada\s+Yth\.?\s*:?\s*([^\n]+)`},
					}},
					perihalRule,
					tanggalRule,
				},
			},
			{
				Type: constants.SuratTugas,
				Fields: []FieldRule{
					{Name: constants.FieldNomorSurat, Alternatives: []Pattern{
						{Expr: `\b(\d+/UN[1I]/[A-Z0-9.\-]+/[A-Z]+/[A-Z]+/\d{4})\b`},
						{Expr: `NOMOR\s*:?\s*(\S+)`},
					}},
					{Name: constants.FieldIsiSurat, Alternatives: []Pattern{
						{Expr: `(Yang\s+bertanda\s+tangan.*?)mestinya\.`},
						{Expr: `((?:Menugaskan|Memberikan\s+tugas).*?)mestinya\.`},
					}},
					ttdRule,
					penerimaRule,
					tanggalRule,
				},
			},
			{
				Type: constants.SuratKuasa,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldPemberiKuasa, Alternatives: []Pattern{
						{Expr: `Yang\s+bertanda\s+tangan.*?Nama\s*:\s*([^\n]+)`},
						{Expr: `\bPemberi\s+Kuasa\s*:\s*([^\n]+)`},
					}},
					{Name: constants.FieldPenerimaKuasa, Alternatives: []Pattern{
						{Expr: `\bmemberi(?:kan)?\s+kuasa\s+kepada\b.*?Nama\s*:\s*([^\n]+)`},
						{Expr: `\bPenerima\s+Kuasa\s*:\s*([^\n]+)`},
					}},
					{Name: constants.FieldIsiSurat, Alternatives: []Pattern{{Expr: `(Untuk\s+dan\s+atas\s+nama[^\n]*)`}}},
					tanggalRule,
				},
			},
			{
				Type: constants.SuratKeterangan,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldIsiSurat, Alternatives: []Pattern{{Expr: `(menerangkan\s+bahwa.*?)\s*Demikian`}}},
					ttdRule,
					tanggalRule,
				},
			},
			{
				Type: constants.SuratPernyataan,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldIsiSurat, Alternatives: []Pattern{{Expr: `(menyatakan.*?)\s*Demikian`}}},
					tanggalRule,
				},
			},
			{
				Type: constants.BeritaAcara,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldIsiSurat, Alternatives: []Pattern{{Expr: `(Pada\s+hari\s+ini.*?)\s*Demikian`}}},
					{Name: constants.FieldTanggalSurat, Alternatives: []Pattern{
						{Expr: `\b(Yogyakarta|Tanggal)\s*[,:]?\s*(\d{1,2}\s+\p{L}+\s+\d{4})`, Groups: []int{2}},
						{Expr: `\b(tanggal)\s+(\d{1,2}\s+\p{L}+\s+\d{4})`, Groups: []int{2}},
					}},
					ttdRule,
				},
			},
			{
				Type: constants.NotaDinas,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldTujuan, Alternatives: []Pattern{
						{Expr: `\bYth\.?\s*:\s*([^\n]+)`},
						{Expr: `\bKepada\s*:\s*([^\n]+)`},
					}},
					{Name: constants.FieldPengirim, Alternatives: []Pattern{{Expr: `\bDari\s*:\s*([^\n]+)`}}},
					perihalRule,
					tanggalRule,
				},
			},
			{
				Type: constants.Keputusan,
				Fields: []FieldRule{
					nomorRule,
					{Name: constants.FieldTentang, Alternatives: []Pattern{{Expr: `\bTENTANG\s*:?\s*([^\n]+)`}}},
					{Name: constants.FieldTanggalSurat, Alternatives: []Pattern{
						{Expr: `(Ditetapkan\s+di\s+\p{L}+\s+pada\s+tanggal|Tanggal)\s*:?\s*(\d{1,2}\s+\p{L}+\s+\d{4})`, Groups: []int{2}},
					}},
					ttdRule,
				},
			},
		},
		Default: Grammar{
			Fields: []FieldRule{
				{Name: constants.FieldNomorSurat, Alternatives: []Pattern{{Expr: `NOMOR\s*:\s*(\S+)`}}},
				{Name: constants.FieldPengirim, Alternatives: []Pattern{{Expr: `\bAsal\s*:\s*([^\n]+)`}}},
				tanggalRule,
			},
		},
		MatchTimeout: DefaultMatchTimeout,
	}
}
