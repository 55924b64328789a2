// Package server exposes the engine over JSON HTTP: a transaction endpoint
// plus read views, with Bearer-token authentication against per-instance
// actors.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmarve/statekeeper/internal/algorithm"
	"github.com/dmarve/statekeeper/internal/game/stats"
	"github.com/dmarve/statekeeper/internal/game/tx"
	"github.com/dmarve/statekeeper/internal/model"
	"github.com/dmarve/statekeeper/internal/world"
)

// Server holds the HTTP surface of the engine.
type Server struct {
	world   *world.World
	catalog algorithm.Catalog
	started time.Time

	// shutdown is invoked by POST /__shutdown when enabled for end-to-end
	// runs; production deployments terminate via signals only.
	shutdown    func()
	e2eShutdown bool
}

// New wires the HTTP surface around a restored world.
func New(w *world.World, e2eShutdown bool, shutdown func()) *Server {
	return &Server{
		world:       w,
		catalog:     algorithm.BuildCatalog(),
		started:     time.Now(),
		shutdown:    shutdown,
		e2eShutdown: e2eShutdown,
	}
}

// Routes builds the endpoint table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{instanceID}/config", s.handleConfig)
	mux.HandleFunc("GET /{instanceID}/stateVersion", s.handleStateVersion)
	mux.HandleFunc("GET /{instanceID}/algorithms", s.handleAlgorithms)
	mux.HandleFunc("GET /{instanceID}/state/player/{playerID}", s.handlePlayerState)
	mux.HandleFunc("GET /{instanceID}/character/{characterID}/stats", s.handleCharacterStats)
	mux.HandleFunc("POST /{instanceID}/tx", s.handleTx)
	if s.e2eShutdown {
		mux.HandleFunc("POST /__shutdown", s.handleShutdown)
	}
	return mux
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response", "err", err)
		http.Error(w, `{"errorCode":"INTERNAL","errorMessage":"encoding failure"}`, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, tx.ErrorBody{ErrorCode: code, ErrorMessage: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(s.started).Seconds()),
		"instances":     len(s.world.InstanceIDs()),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !s.instanceExists(r.PathValue("instanceID")) {
		writeError(w, http.StatusNotFound, tx.CodeInstanceNotFound, "unknown game instance")
		return
	}
	cfg := s.world.Config()
	if cfg == nil {
		writeError(w, http.StatusInternalServerError, tx.CodeConfigNotFound, "no active config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleStateVersion(w http.ResponseWriter, r *http.Request) {
	instanceID := r.PathValue("instanceID")
	var version uint64
	err := s.world.View(instanceID, func(st *model.GameState) error {
		version = st.StateVersion
		return nil
	})
	if errors.Is(err, world.ErrInstanceNotFound) {
		writeError(w, http.StatusNotFound, tx.CodeInstanceNotFound, "unknown game instance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gameInstanceId": instanceID,
		"stateVersion":   version,
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if !s.instanceExists(r.PathValue("instanceID")) {
		writeError(w, http.StatusNotFound, tx.CodeInstanceNotFound, "unknown game instance")
		return
	}
	writeJSON(w, http.StatusOK, s.catalog)
}

// playerProjection is the read view of one player.
type playerProjection struct {
	Characters map[string]*model.Character `json:"characters"`
	Gear       map[string]*model.Gear      `json:"gear"`
	Resources  map[string]int64            `json:"resources"`
}

func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	instanceID := r.PathValue("instanceID")
	playerID := r.PathValue("playerID")
	token := bearerToken(r)

	var (
		projection playerProjection
		status     int
		code, msg  string
	)
	err := s.world.View(instanceID, func(st *model.GameState) error {
		if st.ActorByKey(token) == nil {
			status, code, msg = http.StatusUnauthorized, tx.CodeUnauthorized, "unknown api key"
			return nil
		}
		player, ok := st.Players[playerID]
		if !ok {
			status, code, msg = http.StatusNotFound, tx.CodePlayerNotFound, "player not found"
			return nil
		}
		clone := player.Clone()
		projection = playerProjection{
			Characters: clone.Characters,
			Gear:       clone.Gear,
			Resources:  clone.Resources,
		}
		return nil
	})
	if errors.Is(err, world.ErrInstanceNotFound) {
		writeError(w, http.StatusNotFound, tx.CodeInstanceNotFound, "unknown game instance")
		return
	}
	if status != 0 {
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (s *Server) handleCharacterStats(w http.ResponseWriter, r *http.Request) {
	instanceID := r.PathValue("instanceID")
	characterID := r.PathValue("characterID")
	token := bearerToken(r)

	var (
		sheet     stats.Sheet
		status    int
		code, msg string
	)
	err := s.world.View(instanceID, func(st *model.GameState) error {
		if st.ActorByKey(token) == nil {
			status, code, msg = http.StatusUnauthorized, tx.CodeUnauthorized, "unknown api key"
			return nil
		}
		player, char := st.FindCharacter(characterID)
		if char == nil {
			status, code, msg = http.StatusNotFound, tx.CodeCharacterNotFound, "character not found"
			return nil
		}
		var err error
		sheet, err = stats.Compute(s.world.Config(), player, char)
		return err
	})
	if errors.Is(err, world.ErrInstanceNotFound) {
		writeError(w, http.StatusNotFound, tx.CodeInstanceNotFound, "unknown game instance")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, tx.CodeConfigNotFound, err.Error())
		return
	}
	if status != 0 {
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleTx(w http.ResponseWriter, r *http.Request) {
	instanceID := r.PathValue("instanceID")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, tx.CodeInvalidRequest, "reading request body")
		return
	}

	result, err := s.world.Submit(instanceID, bearerToken(r), body)
	if errors.Is(err, world.ErrInstanceNotFound) {
		// Deliberately uncached: there is no instance to cache it in.
		writeError(w, http.StatusNotFound, tx.CodeInstanceNotFound, "unknown game instance")
		return
	}
	if result.Replay {
		slog.Debug("transaction replayed from cache", "instance", instanceID)
	}
	writeRaw(w, result.StatusCode, result.Body)
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	slog.Info("shutdown requested via endpoint")
	writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	s.shutdown()
}

func (s *Server) instanceExists(instanceID string) bool {
	return s.world.View(instanceID, func(*model.GameState) error { return nil }) == nil
}
