package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paperstack/askdoc/internal/extract"
	"github.com/paperstack/askdoc/internal/models"
)

// maxUploadBytes bounds the total multipart upload size.
const maxUploadBytes = 128 << 20

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type queryResponse struct {
	Query   string                  `json:"query"`
	Results []models.RetrievedChunk `json:"results"`
}

type askRequest struct {
	Query   string           `json:"query"`
	K       int              `json:"k,omitempty"`
	History []models.Message `json:"history,omitempty"`
}

type askResponse struct {
	Answer  string                  `json:"answer"`
	Sources []models.RetrievedChunk `json:"sources"`
}

// handleIngest accepts one or more files in a multipart form under the
// "files" field and ingests each independently: a failed file is reported in
// its entry and never aborts the rest of the upload.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	reports := make([]models.IngestReport, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			reports = append(reports, models.IngestReport{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			reports = append(reports, models.IngestReport{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		meta, err := s.service.IngestFile(r.Context(), content, fh.Filename)
		if err != nil {
			s.logger.Warn("ingest failed", zap.String("filename", fh.Filename), zap.Error(err))
			status := err.Error()
			if errors.Is(err, extract.ErrUnsupportedFormat) {
				status = "unsupported format"
			}
			reports = append(reports, models.IngestReport{Filename: fh.Filename, Error: status})
			continue
		}
		reports = append(reports, models.IngestReport{Filename: fh.Filename, Metadata: &meta})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": reports})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.service.List(r.Context())
	if err != nil {
		s.logger.Error("list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	removed, err := s.service.Remove(r.Context(), filename)
	if err != nil {
		s.logger.Error("remove failed", zap.String("filename", filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"filename": filename, "status": "removed"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query cannot be empty")
		return
	}
	results, err := s.service.Query(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, queryResponse{Query: req.Query, Results: results})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.respondError(w, http.StatusServiceUnavailable, "no answer generator configured")
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query cannot be empty")
		return
	}
	results, err := s.service.Query(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ans, err := s.generator.Generate(r.Context(), req.Query, results, req.History)
	if err != nil {
		s.logger.Error("answer generation failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, askResponse{Answer: ans.Text, Sources: results})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":         stats.Documents,
		"chunks":            stats.Chunks,
		"dimensions":        stats.Dimensions,
		"supported_formats": s.service.SupportedFormats(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
