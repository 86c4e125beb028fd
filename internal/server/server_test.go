package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/async"
	"github.com/joseph-ayodele/letterscan/internal/ocr"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

const e2eBody = `{"source":"scan.pdf","pages":[
	{"number":1,"text":"Universitas Gadjah Mada ... SURAT TUGAS ... NOMOR: 5/UN1/X/2024"},
	{"number":2,"text":"isi penugasan ... mestinya."}]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	proc := pipeline.New(taxonomy.MustCompileDefault())
	h := &async.PipelineHandler{
		Files:     pipeline.NewFileRunner(ocr.NewExtractor(ocr.Config{}, nil), proc, nil),
		Processor: proc,
	}
	reg := async.NewRegistry(0)
	q := async.NewProcessorQueue(h, reg, nil, async.WithWorkers(1))
	t.Cleanup(func() { q.Shutdown(context.Background()) })

	srv := httptest.NewServer(New(h, q, reg, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/", "/healthz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestProcessPages(t *testing.T) {
	srv := newTestServer(t)

	resp, out := post(t, srv.URL+"/v1/process", e2eBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, out["success"])

	results := out["results"].([]any)
	require.Len(t, results, 1)
	doc := results[0].(map[string]any)
	assert.Equal(t, string(constants.SuratTugas), doc["letter_type"])
	assert.Equal(t, true, doc["is_institution_format"])
	fields := doc["extracted_fields"].(map[string]any)
	nomor := fields[constants.FieldNomorSurat].(map[string]any)
	assert.Equal(t, "5/UN1/X/2024", nomor["text"])
}

func TestProcessRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed", `{"pages":`},
		{"nothing to process", `{"source":"a.pdf"}`},
		{"pages and url", `{"pages":[{"number":1,"text":"x"}],"pdf_url":"https://example.com/a.pdf"}`},
		{"bad url", `{"pdf_url":"file:///etc/passwd"}`},
		{"bad callback", `{"pages":[{"number":1,"text":"x"}],"callback_url":"nope"}`},
		{"bad page number", `{"pages":[{"number":0,"text":"x"}]}`},
		{"unknown field", `{"pages":[{"number":1,"text":"x"}],"lang":"id"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, srv.URL+"/v1/process", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Equal(t, false, out["success"])
			require.NotEmpty(t, out["message"])
		})
	}
}

func TestProcessPDFURLDownloadFailure(t *testing.T) {
	origin := httptest.NewServer(http.NotFoundHandler())
	defer origin.Close()
	srv := newTestServer(t)

	resp, out := post(t, srv.URL+"/process_pdf", `{"pdf_url":"`+origin.URL+`/surat.pdf"}`)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, "DOWNLOAD_FAILED", out["code"])
}

func TestJobsLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, out := post(t, srv.URL+"/v1/jobs", e2eBody)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	id := out["job_id"].(string)
	require.Equal(t, "/v1/jobs/"+id, resp.Header.Get("Location"))
	require.Equal(t, string(constants.JobStatusQueued), out["status"])

	var st async.Status
	require.Eventually(t, func() bool {
		r, err := http.Get(srv.URL + "/v1/jobs/" + id)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		if r.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			return false
		}
		return st.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)

	require.Equal(t, constants.JobStatusDone, st.Status)
	require.Len(t, st.Results, 1)
	require.Equal(t, "5/UN1/X/2024", st.Results[0].Fields[constants.FieldNomorSurat].Text)
}

func TestGetJobErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/jobs/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/jobs/" + uuid.NewString())
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "JOB_NOT_FOUND", out["code"])
}

func TestSubmitAfterShutdown(t *testing.T) {
	proc := pipeline.New(taxonomy.MustCompileDefault())
	h := &async.PipelineHandler{Processor: proc}
	reg := async.NewRegistry(0)
	q := async.NewProcessorQueue(h, reg, nil)
	q.Shutdown(context.Background())

	srv := httptest.NewServer(New(h, q, reg, nil).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/jobs", "application/json", bytes.NewBufferString(e2eBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
