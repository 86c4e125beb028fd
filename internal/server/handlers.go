package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/async"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
	"github.com/joseph-ayodele/letterscan/internal/segment"
)

// processRequest carries either inline pages or a PDF URL.
type processRequest struct {
	Source      string         `json:"source"`
	Pages       []segment.Page `json:"pages"`
	PDFURL      string         `json:"pdf_url"`
	CallbackURL string         `json:"callback_url"`
}

type processResponse struct {
	Success bool              `json:"success"`
	Results []pipeline.Result `json:"results"`
}

type submitResponse struct {
	Success bool                `json:"success"`
	JobID   uuid.UUID           `json:"job_id"`
	Status  constants.JobStatus `json:"status"`
}

func decodeRequest(r *http.Request, w http.ResponseWriter) (processRequest, error) {
	var req processRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, common.NewAppError("INVALID_INPUT", "request body is required", common.ErrInvalidInput)
		}
		return req, common.NewAppError("INVALID_INPUT", fmt.Sprintf("malformed request: %v", err), common.ErrInvalidInput)
	}

	v := common.NewValidator().
		Check(len(req.Pages) > 0 || req.PDFURL != "", "pages", nil, "pages or pdf_url is required").
		Check(len(req.Pages) == 0 || req.PDFURL == "", "pdf_url", req.PDFURL, "send either pages or pdf_url, not both").
		Field("pdf_url", req.PDFURL, common.HTTPURL).
		Field("callback_url", req.CallbackURL, common.HTTPURL).
		Field("source", req.Source, common.MaxLength(512))
	for i, p := range req.Pages {
		v.Check(p.Number > 0, fmt.Sprintf("pages[%d].number", i), p.Number, "must be positive")
	}
	if err := v.Error(); err != nil {
		return req, err
	}
	return req, nil
}

func (req processRequest) job(r *http.Request) async.Job {
	return async.Job{
		ID:          uuid.New(),
		Source:      req.Source,
		Pages:       req.Pages,
		URL:         req.PDFURL,
		CallbackURL: req.CallbackURL,
		SubmittedAt: time.Now().UTC(),
		RequestID:   common.RequestIDFromContext(r.Context()),
	}
}

// handleProcess runs the pipeline synchronously.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.handler.Handle(r.Context(), req.job(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJson(w, http.StatusOK, processResponse{Success: true, Results: results})
}

// handleSubmitJob queues the request and answers 202 with the job ID.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job := req.job(r)
	if err := s.queue.Enqueue(r.Context(), job); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/jobs/"+job.ID.String())
	writeJson(w, http.StatusAccepted, submitResponse{Success: true, JobID: job.ID, Status: constants.JobStatusQueued})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	if err := common.NewValidator().Field("id", idStr, common.UUID).Error(); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := uuid.MustParse(idStr)
	st, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, r, common.NewAppError("JOB_NOT_FOUND", "job "+idStr+" not found", common.ErrNotFound))
		return
	}
	writeJson(w, http.StatusOK, st)
}
