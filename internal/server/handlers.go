package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/document"
	"github.com/doculens/doculens/internal/extract"
	"github.com/doculens/doculens/internal/pdf"
	"github.com/doculens/doculens/internal/pipeline"
)

// handleExtract accepts a multipart upload (field "file", .pdf or .txt), runs
// the extraction pipeline synchronously, and streams back the workbook.
// An optional "prompt_template" form field overrides the stock prompt; it must
// keep the single document-text substitution point.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request",
			"no document provided: upload a file with the field name 'file'")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if !constants.IsAllowedExt(ext) {
		writeError(w, http.StatusBadRequest, "invalid_file_type",
			fmt.Sprintf("unsupported file format %q: only .pdf and .txt are accepted", ext))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read_error", "failed to read uploaded file")
		return
	}

	var doc *pdf.DocumentText
	switch constants.NormalizeExt(ext) {
	case "pdf":
		doc, err = s.loader.LoadFromBytes(data)
	default:
		doc, err = s.loader.LoadText(string(data))
	}
	if err != nil {
		// Loader failures are input problems: unreadable PDF, page budget
		// exceeded, or no extractable text.
		var emptyDoc *extract.EmptyDocumentError
		if errors.As(err, &emptyDoc) {
			writeError(w, http.StatusBadRequest, "empty_document",
				"the document contains no extractable text")
		} else {
			writeError(w, http.StatusBadRequest, "invalid_document", err.Error())
		}
		return
	}

	outcome, err := s.proc.Run(r.Context(), pipeline.Input{
		Name:           header.Filename,
		Text:           doc.Text,
		PageCount:      doc.PageCount,
		PromptTemplate: r.FormValue("prompt_template"),
	})
	if err != nil {
		s.respondError(w, err, header.Filename)
		return
	}

	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)) + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Job-Id", outcome.JobID.String())
	w.Header().Set("X-Provider-Used", outcome.Provider)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(outcome.XLSX)
}

// handleHistory lists recent extraction jobs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "history_disabled", "no history store configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	jobs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.Error("history.list.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// respondError maps pipeline error types onto HTTP statuses. Input problems
// are the client's fault; provider exhaustion and structurally broken model
// output are upstream failures.
func (s *Server) respondError(w http.ResponseWriter, err error, name string) {
	s.log.Error("extract.request.failed", "name", name, "error", err)

	var (
		emptyDoc   *extract.EmptyDocumentError
		noProvider *extract.NoProviderAvailableError
		exhausted  *extract.ExhaustedProvidersError
		structural *document.StructuralViolationError
	)
	switch {
	case errors.As(err, &emptyDoc):
		writeError(w, http.StatusBadRequest, "empty_document",
			"the document contains no extractable text")
	case errors.As(err, &noProvider):
		writeError(w, http.StatusServiceUnavailable, "no_provider",
			noProvider.Error())
	case errors.As(err, &exhausted):
		writeError(w, http.StatusBadGateway, "providers_exhausted",
			fmt.Sprintf("extraction failed after %d attempts", len(exhausted.Attempts)))
	case errors.As(err, &structural):
		writeError(w, http.StatusBadGateway, "structural_violation",
			structural.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "extraction failed")
	}
}
