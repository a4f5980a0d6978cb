package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/hub"
	"github.com/DoyleJ11/team-builder/internal/lobby"
	"github.com/DoyleJ11/team-builder/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	idleTimeout  = 5 * time.Minute
	outboxSize   = 8
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		lb := h.Lobby(code)
		if lb == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		clog := log.With(zap.String("room", code), zap.String("client", clientID))

		out := make(chan lobby.Snapshot, outboxSize)
		if !lb.Send(lobby.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "room closed")
			return
		}
		defer lb.Send(lobby.Leave{ClientID: clientID})
		clog.Info("client connected")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		writerDone := make(chan struct{})
		defer func() {
			writeCancel()
			<-writerDone
		}()
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-writeCtx.Done():
					return
				case snap, ok := <-out:
					if !ok {
						// Dropped as a slow client, or the room shut down.
						conn.Close(websocket.StatusGoingAway, "room closed")
						return
					}
					state := types.NewSnapshot(snap.Version, snap.State)
					msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &state}
					if err := writeJSON(writeCtx, conn, msg); err != nil {
						clog.Debug("snapshot write failed", zap.Error(err))
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), idleTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					clog.Info("client disconnected")
				default:
					clog.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				sendError(r.Context(), conn, "bad json")
				continue
			}

			cmd, err := types.ToEngineCommand(cm)
			if err != nil {
				sendError(r.Context(), conn, err.Error())
				continue
			}

			res, err := lb.Do(r.Context(), clientID, cmd)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				sendError(r.Context(), conn, err.Error())
				continue
			}
			if res.Err != nil {
				sendError(r.Context(), conn, res.Err.Error())
			}
		}
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

func sendError(ctx context.Context, conn *websocket.Conn, msg string) {
	_ = writeJSON(ctx, conn, types.ServerMessage{Type: "Error", Error: msg})
}
