package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// WSHandler streams live per-quiz leaderboard updates over a websocket.
// Clients receive the current standings on connect and a fresh snapshot
// after every recorded attempt.
type WSHandler struct {
	service  *app.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS subscribes the connection to one quiz's leaderboard feed. The
// subscription is taken before upgrading so a missing quiz still gets a
// proper 404.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeError(w, domain.Validationf("missing quizId"))
		return
	}

	updates, cancel, err := h.service.SubscribeLeaderboard(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for board := range updates {
			msg := outboundMessage[domain.QuizLeaderboard]{Type: "leaderboard", Payload: board}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// The read loop only watches for the peer closing the connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writerDone
}
