package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// Router wires the websocket endpoint and the HTTP API.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.HandleWebSocket)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)

	// Method mismatches on these routes answer 405
	r.HandleFunc("/api/arena", s.handleArena).Methods(http.MethodGet)
	r.HandleFunc("/api/agents/{id}", s.handleAgent).Methods(http.MethodGet)
	r.HandleFunc("/api/agents/{id}/difficulty", s.handleAgentDifficulty).Methods(http.MethodPost)
	r.HandleFunc("/api/bases", s.handleBases).Methods(http.MethodGet)
	r.HandleFunc("/api/schema/snapshot", handleSnapshotSchema).Methods(http.MethodGet)
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleArena(w http.ResponseWriter, r *http.Request) {
	s.worldMu.Lock()
	summary := s.world.Summary()
	s.worldMu.Unlock()
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.worldMu.Lock()
	detail, ok := s.world.AgentDetail(id)
	s.worldMu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleAgentDifficulty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	id := mux.Vars(r)["id"]
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	if _, ok := s.world.CombatAgent(id); !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	a, err := s.world.SetAgentDifficulty(id, body.Label)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, combatView(a))
}

func (s *Server) handleBases(w http.ResponseWriter, r *http.Request) {
	s.worldMu.Lock()
	bases := s.world.Bases()
	s.worldMu.Unlock()
	writeJSON(w, http.StatusOK, bases)
}

func handleSnapshotSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SnapshotSchema())
}
