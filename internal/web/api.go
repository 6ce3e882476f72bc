// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

var errInvalidSingle = errors.New("single must be a boolean")

// RunRequest is the body of POST /api/run.
type RunRequest struct {
	Path string `json:"path"`
}

// ReloadResponse is returned by POST /api/reload.
type ReloadResponse struct {
	Count int `json:"count"`
}

// handleGetProjects handles GET /api/projects.
func (s *Server) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	records := s.service.Projects()
	if records == nil {
		records = []project.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleMatch handles GET /api/match?q=<text>&single=<bool>.
// Returns matches ordered by descending relevance.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.rankedMatches(q))
}

func parseQuery(r *http.Request) (matcher.Query, error) {
	values := r.URL.Query()
	q := matcher.Query{Text: values.Get("q")}
	if raw := values.Get("single"); raw != "" {
		single, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errInvalidSingle
		}
		q.SingleRunner = single
	}
	return q, nil
}

func (s *Server) rankedMatches(q matcher.Query) []matcher.Match {
	matches := matcher.Rank(s.service.Match(q))
	if matches == nil {
		matches = []matcher.Match{}
	}
	return matches
}

// handleRun handles POST /api/run. Only paths of loaded records can be
// opened. Returns 204 once the editor has been started.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	rec, ok := s.service.Find(req.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if err := s.service.Run(rec); err != nil {
		s.logger.Error("failed to open project", "path", rec.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleReload handles POST /api/reload. It re-reads the configuration when
// a loader is set, then reloads every source.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var records []project.Record
	if s.loadConfig != nil {
		cfg, err := s.loadConfig()
		if err != nil {
			s.logger.Error("failed to reload config", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to reload config")
			return
		}
		records = s.service.Reload(cfg)
	} else {
		records = s.service.LoadAll()
	}

	writeJSON(w, http.StatusOK, ReloadResponse{Count: len(records)})
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
