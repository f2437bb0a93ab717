package handlers

import (
	"encoding/json"
	"errors"

	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/session"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/websocket"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// frameFlag marks connections that receive binary PNG frames
const frameFlag = "frames"

var errInvalidData = errors.New(websocket.ErrInvalidMessageData)

// layerMessage is a "layer" payload: the slot plus any LayerPatch field
type layerMessage struct {
	Slot string `json:"slot"`
	editor.LayerPatch
}

type framesMessage struct {
	Enabled bool `json:"enabled"`
}

// handleEditorWS attaches a WebSocket editing channel to the session.
// ?frames=1 subscribes to binary frames right away.
func (h *Handlers) handleEditorWS(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	wantFrames := cast.ToBool(c.Query(frameFlag))
	_, err := websocket.Serve(h.wsHub, c.Writer, c.Request, s.ID, h.editorChannel(s), func(conn *websocket.Connection) {
		conn.Set(frameFlag, wantFrames)
		_ = conn.SendJSON(websocket.MessageTypeState, s.Snapshot())
		if wantFrames {
			sendFrame(s, conn)
		}
	})
	if err != nil {
		logger.Warn("editor channel not opened", zap.String("session", s.ID), zap.Error(err))
	}
}

func sendFrame(s *session.Session, conn *websocket.Connection) {
	data, _, err := frame(s)
	if err != nil {
		return
	}
	_ = conn.SendBinary(data)
}

// editorChannel handles the client messages of one session
func (h *Handlers) editorChannel(s *session.Session) websocket.MessageHandler {
	return websocket.MessageHandlerFunc(func(conn *websocket.Connection, msg *websocket.Message) error {
		switch msg.Type {
		case websocket.MessageTypeInput:
			var raw editor.RawEvent
			if err := json.Unmarshal(msg.Data, &raw); err != nil {
				return errInvalidData
			}
			res, err := handleInput(s, raw)
			if err != nil {
				return err
			}
			if err := conn.SendJSON(websocket.MessageTypeOutcome, res); err != nil {
				return err
			}
			if res.Outcome.Changed {
				h.pushFrame(s)
			}
			return nil

		case websocket.MessageTypeLayer:
			var lm layerMessage
			if err := json.Unmarshal(msg.Data, &lm); err != nil {
				return errInvalidData
			}
			slot, err := editor.ParseSlot(lm.Slot)
			if err != nil {
				return err
			}
			_, state, err := applyPatch(s, slot, lm.LayerPatch)
			if err != nil {
				return err
			}
			h.broadcastState(s.ID, state)
			h.pushFrame(s)
			return nil

		case websocket.MessageTypeFrames:
			fm := framesMessage{Enabled: true}
			if len(msg.Data) > 0 {
				if err := json.Unmarshal(msg.Data, &fm); err != nil {
					return errInvalidData
				}
			}
			conn.Set(frameFlag, fm.Enabled)
			if fm.Enabled {
				sendFrame(s, conn)
			}
			return nil

		case websocket.MessageTypeState:
			return conn.SendJSON(websocket.MessageTypeState, s.Snapshot())
		}
		return errors.New(websocket.ErrInvalidMessageType)
	})
}
