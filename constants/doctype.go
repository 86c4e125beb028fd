package constants

import (
	"strings"
)

// DocumentType is one value of the closed letter taxonomy.
type DocumentType string

const (
	SuratPermohonan DocumentType = "SuratPermohonan"
	SuratTugas      DocumentType = "SuratTugas"
	SuratKuasa      DocumentType = "SuratKuasa"
	SuratKeterangan DocumentType = "SuratKeterangan"
	SuratPernyataan DocumentType = "SuratPernyataan"
	BeritaAcara     DocumentType = "BeritaAcara"
	NotaDinas       DocumentType = "NotaDinas"
	Keputusan       DocumentType = "Keputusan"
	Unknown         DocumentType = "Unknown"
)

var allDocumentTypes = []DocumentType{
	SuratPermohonan,
	SuratTugas,
	SuratKuasa,
	SuratKeterangan,
	SuratPernyataan,
	BeritaAcara,
	NotaDinas,
	Keputusan,
	Unknown,
}

var labels = map[DocumentType]string{
	SuratPermohonan: "Surat Permohonan",
	SuratTugas:      "Surat Tugas",
	SuratKuasa:      "Surat Kuasa",
	SuratKeterangan: "Surat Keterangan",
	SuratPernyataan: "Surat Pernyataan",
	BeritaAcara:     "Berita Acara",
	NotaDinas:       "Nota Dinas",
	Keputusan:       "Keputusan",
	Unknown:         "Tidak Diketahui",
}

// AllDocumentTypes returns the taxonomy in declaration order.
func AllDocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, t := range allDocumentTypes {
		result[i] = string(t)
	}
	return result
}

// Label is the Indonesian display name, e.g. "Surat Tugas".
func (t DocumentType) Label() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return labels[Unknown]
}

// Canonicalize maps free-form labels ("surat_tugas", "Surat Tugas",
// "tidak diketahui") onto the taxonomy.
func Canonicalize(input string) (DocumentType, bool) {
	if strings.TrimSpace(input) == "" {
		return Unknown, false
	}

	normalized := squash(input)

	synonyms := map[string]DocumentType{
		"permohonan":     SuratPermohonan,
		"surattugas":     SuratTugas,
		"penugasan":      SuratTugas,
		"kuasa":          SuratKuasa,
		"keterangan":     SuratKeterangan,
		"pernyataan":     SuratPernyataan,
		"notadinas":      NotaDinas,
		"nota":           NotaDinas,
		"sk":             Keputusan,
		"suratkeputusan": Keputusan,
		"tidakdiketahui": Unknown,
		"lainnya":        Unknown,
		"default":        Unknown,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allDocumentTypes {
		if normalized == squash(string(t)) || normalized == squash(labels[t]) {
			return t, true
		}
	}

	return Unknown, false
}

// squash lowercases and drops spaces, underscores and dashes.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
