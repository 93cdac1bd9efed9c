package http

import (
	"context"
	"encoding/json"
	"net/http"

	"compat-quiz-service/internal/app"
	"compat-quiz-service/internal/domain"
	"compat-quiz-service/internal/engine"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler drives one quiz session per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type namePayload struct {
	Name string `json:"name"`
}

type selectPayload struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type closedPayload struct {
	Reason string `json:"reason"`
}

type viewPayload struct {
	SessionID string `json:"sessionId"`
	domain.QuestionView
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx, quizID, name)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	ended := false
	defer func() {
		if ended {
			return
		}
		// the request context is gone once the client disconnects
		if err := h.service.Close(context.WithoutCancel(ctx), session.ID); err != nil {
			h.log.Debug("close session", zap.String("session", session.ID), zap.Error(err))
		}
	}()

	if err := h.writeView(ctx, conn, session); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		reply, err := h.handle(ctx, session.ID, inbound)
		if err != nil {
			if !domain.IsRejection(err) {
				h.log.Warn("quiz operation failed", zap.String("type", inbound.Type), zap.Error(err))
			}
			reply = errorMessage(err)
		}
		if err := conn.WriteJSON(reply); err != nil {
			h.log.Debug("ws write error", zap.Error(err))
			return
		}
		if _, ok := reply.(outboundMessage[closedPayload]); ok {
			ended = true
			return
		}
	}
}

func (h *WSHandler) handle(ctx context.Context, sessionID string, inbound inboundMessage) (any, error) {
	var (
		session domain.Session
		err     error
	)
	switch inbound.Type {
	case "name":
		var payload namePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid name payload"}}, nil
		}
		session, err = h.service.SubmitName(ctx, sessionID, payload.Name)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid select payload"}}, nil
		}
		session, err = h.service.Select(ctx, sessionID, payload.Question, payload.Option)
	case "next":
		var completion *domain.Completion
		session, completion, err = h.service.Next(ctx, sessionID)
		if err == nil && completion != nil {
			return outboundMessage[domain.ResultView]{Type: "result", Payload: engine.ResultView(*completion)}, nil
		}
	case "back":
		session, err = h.service.Back(ctx, sessionID)
	case "retake":
		session, err = h.service.Retake(ctx, sessionID)
	case "contact":
		if err := h.service.Contact(ctx, sessionID); err != nil {
			return nil, err
		}
		return outboundMessage[closedPayload]{Type: "closed", Payload: closedPayload{Reason: "contact"}}, nil
	default:
		return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "unsupported message type"}}, nil
	}
	if err != nil {
		return nil, err
	}
	view, err := h.service.ViewOf(ctx, session)
	if err != nil {
		return nil, err
	}
	return outboundMessage[viewPayload]{Type: "view", Payload: viewPayload{SessionID: session.ID, QuestionView: view}}, nil
}

func (h *WSHandler) writeView(ctx context.Context, conn *websocket.Conn, session domain.Session) error {
	view, err := h.service.ViewOf(ctx, session)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return err
	}
	return conn.WriteJSON(outboundMessage[viewPayload]{Type: "view", Payload: viewPayload{SessionID: session.ID, QuestionView: view}})
}

func errorMessage(err error) outboundMessage[errorPayload] {
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: domain.Code(err), Message: err.Error()}}
}
