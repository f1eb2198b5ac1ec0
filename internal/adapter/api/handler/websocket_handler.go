package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/middleware"
	"civicalert/internal/domain/entity"
	ws "civicalert/internal/infrastructure/websocket"
	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler opens one map session per connection.
type WebSocketHandler struct {
	wsManager    *ws.Manager
	userUseCase  *usecase.UserUseCase
	deps         usecase.MapSessionDeps
	readyTimeout time.Duration
}

func NewWebSocketHandler(wsManager *ws.Manager, userUseCase *usecase.UserUseCase, deps usecase.MapSessionDeps, readyTimeout time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:    wsManager,
		userUseCase:  userUseCase,
		deps:         deps,
		readyTimeout: readyTimeout,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	profile, err := h.userUseCase.GetProfile(c.Request().Context(), userID, middleware.Role(c))
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed for user %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	if !h.wsManager.Add(client) {
		conn.Close()
		return nil
	}
	go client.WritePump()

	ctx, cancel := context.WithCancel(context.Background())
	bridge := ws.NewMapBridge(client, h.readyTimeout)

	deps := h.deps
	deps.Surfaces = bridge.Factory()
	session := usecase.NewMapSession(deps, profile, func(event string, payload interface{}) {
		if err := client.Enqueue(event, payload); err != nil {
			logger.Debug("WebSocket: dropped %s for client %s: %v", event, client.ID, err)
		}
	})

	d := &sessionDispatcher{ctx: ctx, client: client, bridge: bridge, session: session}
	session.Open(ctx)

	go func() {
		client.ReadPump(h.wsManager, d.dispatch)
		cancel()
		session.Close()
		bridge.Close()
		logger.Debug("WebSocket: session closed for user %s", userID)
	}()

	return nil
}

// sessionDispatcher routes inbound frames of one connection.
type sessionDispatcher struct {
	ctx     context.Context
	client  ws.Sender
	bridge  *ws.MapBridge
	session *usecase.MapSession
}

func (d *sessionDispatcher) dispatch(raw []byte) {
	msg, err := ws.DecodeMessage(raw)
	if err != nil {
		d.sendError("INVALID_MESSAGE", "Invalid message format")
		return
	}

	switch msg.Type {
	case ws.MessageTypePing:
		d.client.Enqueue(ws.MessageTypePong, nil)

	case ws.MessageTypeMapReady:
		d.bridge.HandleReady()

	case ws.MessageTypeMapClick:
		var data ws.ClickData
		if d.decode(msg, &data) {
			d.bridge.HandleClick(entity.Coordinate{Latitude: data.Latitude, Longitude: data.Longitude})
		}

	case ws.MessageTypeAnimationDone:
		var data ws.AnimationDoneData
		if d.decode(msg, &data) {
			d.bridge.HandleAnimationDone(data.ID, data.Interrupted)
		}

	case ws.MessageTypeFilterSet:
		var data ws.FilterData
		if d.decode(msg, &data) {
			d.session.SetFilter(data.Tab, data.Category)
		}

	case ws.MessageTypeReportStart:
		d.session.StartReport()

	case ws.MessageTypeReportCancel:
		d.session.CancelReport()

	case ws.MessageTypeReportForm:
		var data ws.ReportFormData
		if !d.decode(msg, &data) {
			return
		}
		form, err := reportForm(data)
		if err != nil {
			d.sendError(errors.CodeValidation, err.Error())
			return
		}
		d.session.UpdateReport(form)

	case ws.MessageTypeReportSubmit:
		// Submitting uploads and writes; keep reading frames meanwhile.
		go d.session.SubmitReport(d.ctx)

	case ws.MessageTypeOnboardName:
		var data ws.OnboardingNameData
		if d.decode(msg, &data) {
			go d.session.NameHomeCity(d.ctx, data.Name)
		}

	default:
		d.sendError("UNKNOWN_MESSAGE", "Unknown message type "+msg.Type)
	}
}

func (d *sessionDispatcher) decode(msg *ws.WSMessage, v interface{}) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		d.sendError("INVALID_MESSAGE", "Invalid data for "+msg.Type)
		return false
	}
	return true
}

func (d *sessionDispatcher) sendError(code, message string) {
	d.client.Enqueue(ws.MessageTypeError, ws.ErrorData{Code: code, Message: message})
}

func reportForm(data ws.ReportFormData) (usecase.ReportForm, error) {
	form := usecase.ReportForm{
		Title:       data.Title,
		Category:    data.Category,
		Description: data.Description,
	}
	if data.PhotoBase64 == "" {
		return form, nil
	}

	b, err := base64.StdEncoding.DecodeString(data.PhotoBase64)
	if err != nil {
		return form, errors.Validation("Photo is not valid base64")
	}
	contentType := data.PhotoContentType
	if contentType == "" {
		contentType = http.DetectContentType(b)
	}
	form.Photo = &usecase.Photo{Data: b, ContentType: contentType, Filename: data.PhotoFilename}
	return form, nil
}
