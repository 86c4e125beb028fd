package constants

// Field names shared by the built-in grammars and ground-truth files.
const (
	FieldNomorSurat    = "nomor_surat"
	FieldTanggalSurat  = "tanggal_surat"
	FieldPerihal       = "perihal"
	FieldPengirim      = "pengirim"
	FieldTujuan        = "tujuan"
	FieldPenerimaSurat = "penerima_surat"
	FieldIsiSurat      = "isi_surat"
	FieldTTDSurat      = "ttd_surat"
	FieldPemberiKuasa  = "pemberi_kuasa"
	FieldPenerimaKuasa = "penerima_kuasa"
	FieldTentang       = "tentang"
)
