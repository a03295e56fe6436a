package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/unihelp/sotay/internal/llm"
	"github.com/unihelp/sotay/internal/models"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	if !validSource(req.Source) {
		s.respondError(w, http.StatusBadRequest, "source must be one of: auto, local, web, both")
		return
	}
	s.logger.Debug("chat request", zap.String("question", req.Question), zap.String("source", req.Source))
	answer, usedSources, err := s.answerer.Answer(r.Context(), req.Question, req.Source)
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		if errors.Is(err, llm.ErrUpstream) {
			s.respondError(w, http.StatusBadGateway, "language model unavailable")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.ChatResponse{
		Answer:      answer,
		UsedSources: usedSources,
	})
}

// validSource accepts the evidence-source overrides; empty means auto.
func validSource(source string) bool {
	switch source {
	case "", "auto", "local", "web", "both":
		return true
	default:
		return false
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docCount,
		"chunks":    chunkCount,
		"vectors":   s.store.Count(),
		"config": map[string]interface{}{
			"embedding_provider":   s.config.Embedding.Provider,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"chat_model":           s.config.LLM.ChatModel,
			"chunk_size":           s.config.Ingest.ChunkSize,
			"chunk_overlap":        s.config.Ingest.ChunkOverlap,
			"min_score":            s.config.Retrieval.MinScore,
			"web_search":           s.config.WebSearch.APIKey != "",
		},
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
