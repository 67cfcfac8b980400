// ABOUTME: Local demo backend implementing the record REST contract
// ABOUTME: Serves {success,data} record and collection responses from the local store
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/adrata/pipenav/db"
	"github.com/adrata/pipenav/models"
)

// Server exposes the local record store over the same REST shape the real
// CRM backend uses, so the full resolution chain runs without it.
type Server struct {
	db        *sql.DB
	workspace string
}

func NewServer(database *sql.DB, workspace string) *Server {
	return &Server{db: database, workspace: workspace}
}

// Handler returns the route table. Split out from Start so tests can mount
// it on an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/", s.handleAPI)
	return mux
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting demo backend at http://localhost%s (workspace %q)", addr, s.workspace)
	return http.ListenAndServe(addr, s.Handler())
}

// handleAPI routes /api/v1/<workspace>/<section>/records[/<id>].
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/"), "/")
	if len(parts) < 3 || parts[2] != "records" {
		http.NotFound(w, r)
		return
	}

	workspace := parts[0]
	if workspace != s.workspace {
		http.NotFound(w, r)
		return
	}

	section, err := models.ParseSection(parts[1])
	if err != nil {
		http.Error(w, "Unknown section", http.StatusBadRequest)
		return
	}

	if len(parts) == 4 {
		s.handleRecord(w, r, section, parts[3])
		return
	}
	s.handleCollection(w, r, section)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request, section models.Section, id string) {
	rec, err := db.GetRecord(s.db, section, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"data":    recordPayload(*rec),
	})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request, section models.Section) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, total, err := db.ListRecords(s.db, section, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		payload = append(payload, recordPayload(rec))
	}

	writeJSON(w, map[string]any{
		"success": true,
		"data":    payload,
		"total":   total,
	})
}

// recordPayload flattens a record back into the wire shape: the field map
// with the id embedded.
func recordPayload(rec models.Record) map[string]any {
	out := make(map[string]any, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		out[k] = v
	}
	out["id"] = rec.ID
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
