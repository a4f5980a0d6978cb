package httpapi

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/engine"
	"github.com/DoyleJ11/team-builder/internal/export"
	"github.com/DoyleJ11/team-builder/internal/hub"
	"github.com/DoyleJ11/team-builder/internal/lobby"
	"github.com/DoyleJ11/team-builder/internal/types"
)

const codeLength = 6

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateRoom(h *hub.Hub, newState func() engine.State, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			if h.Lobby(c) == nil {
				code = c
				break
			}
			log.Debug("collision on room code, regenerating", zap.String("code", c))
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureLobby{Code: code, State: newState(), Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}
		log.Info("room created", zap.String("room", code))

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func GetRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := h.Lobby(chi.URLParam(r, "code"))
		if lb == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		v, ok := lb.View(r.Context())
		if !ok {
			writeError(w, http.StatusNotFound, "room closed")
			return
		}
		snap := types.NewSnapshot(v.Version, v.State)
		writeJSON(w, http.StatusOK, types.ServerMessage{Type: "StateSnapshot", Version: v.Version, State: &snap})
	}
}

// PostCommand applies one client message and answers with the resulting
// snapshot.
func PostCommand(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := h.Lobby(chi.URLParam(r, "code"))
		if lb == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		var cm types.ClientMessage
		if err := json.NewDecoder(r.Body).Decode(&cm); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		cmd, err := types.ToEngineCommand(cm)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		clientID := "http-" + middleware.GetReqID(r.Context())
		res, err := lb.Do(r.Context(), clientID, cmd)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "room closed")
			return
		}
		if res.Err != nil {
			writeError(w, http.StatusBadRequest, res.Err.Error())
			return
		}
		snap := types.NewSnapshot(res.Version, res.State)
		writeJSON(w, http.StatusOK, types.ServerMessage{Type: "StateSnapshot", Version: res.Version, State: &snap})
	}
}

func ExportPNG(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := h.Lobby(chi.URLParam(r, "code"))
		if lb == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		v, ok := lb.View(r.Context())
		if !ok {
			writeError(w, http.StatusNotFound, "room closed")
			return
		}

		var buf bytes.Buffer
		if err := export.RenderPNG(&buf, v.State); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to render roster")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ServerMessage{Type: "Error", Error: msg})
}
