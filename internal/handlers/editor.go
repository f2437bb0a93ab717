package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/session"
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/code-100-precent/LingMeme/pkg/websocket"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionView is what the session endpoints answer with
type SessionView struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	State     editor.State `json:"state"`
}

func viewOf(s *session.Session) SessionView {
	return SessionView{ID: s.ID, CreatedAt: s.CreatedAt, State: s.Snapshot()}
}

// rememberSession stores id in the cookie session when the middleware is installed
func rememberSession(c *gin.Context, id string) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return
	}
	s := sessions.Default(c)
	s.Set(constants.EditorSessionKey, id)
	if err := s.Save(); err != nil {
		logger.Warn("save editor session cookie failed", zap.Error(err))
	}
}

func rememberedSession(c *gin.Context) string {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	v, _ := sessions.Default(c).Get(constants.EditorSessionKey).(string)
	return v
}

// session resolves :id, answering 404 when it is gone
func (h *Handlers) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return s, true
}

func (h *Handlers) handleCreateSession(c *gin.Context) {
	s, err := h.registry.Create(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	rememberSession(c, s.ID)
	response.Result(c, http.StatusCreated, http.StatusCreated, "session created", viewOf(s))
}

// handleCurrentSession resumes the session remembered in the cookie, or starts one
func (h *Handlers) handleCurrentSession(c *gin.Context) {
	if id := rememberedSession(c); id != "" {
		if s, err := h.registry.Get(c.Request.Context(), id); err == nil {
			response.Success(c, "success", viewOf(s))
			return
		}
	}
	h.handleCreateSession(c)
}

func (h *Handlers) handleGetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, "success", viewOf(s))
}

func (h *Handlers) handleDeleteSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.registry.Delete(c.Request.Context(), s.ID); err != nil {
		fail(c, err)
		return
	}
	h.wsHub.CloseGroup(s.ID)
	response.Success(c, "session closed", nil)
}

// readSource accepts a multipart "image" file or a JSON source descriptor
func (h *Handlers) readSource(c *gin.Context) (editor.Source, error) {
	ct := c.ContentType()
	if strings.HasPrefix(ct, "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
		fh, err := c.FormFile("image")
		if err != nil {
			return editor.Source{}, err
		}
		if fh.Size > h.maxUpload {
			return editor.Source{}, utils.ErrPayloadTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return editor.Source{}, err
		}
		defer f.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, io.LimitReader(f, h.maxUpload+1)); err != nil {
			return editor.Source{}, err
		}
		if int64(buf.Len()) > h.maxUpload {
			return editor.Source{}, utils.ErrPayloadTooLarge
		}
		if buf.Len() == 0 {
			return editor.Source{}, editor.ErrEmptySource
		}
		return editor.Source{Data: buf.Bytes()}, nil
	}

	// data URL 经 base64 膨胀约 4/3
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload*4/3+4096)
	var src editor.Source
	if err := c.ShouldBindJSON(&src); err != nil {
		return editor.Source{}, err
	}
	return src, nil
}

func (h *Handlers) handleLoadImage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	src, err := h.readSource(c)
	if err != nil {
		if he := httpError(err); he.Code == http.StatusInternalServerError {
			err = utils.ErrInvalidParams
		}
		fail(c, err)
		return
	}

	// 解码在会话锁外进行
	img, err := h.loader.Load(c.Request.Context(), src)
	if err != nil {
		fail(c, err)
		return
	}

	var state editor.State
	_ = s.Do(func(ed *editor.Editor) error {
		ed.LoadImage(img, src.Name())
		state = ed.Snapshot()
		return nil
	})
	logger.Info("editor image loaded",
		zap.String("session", s.ID),
		zap.String("source", src.Name()),
		zap.Int("width", state.Canvas.Width),
		zap.Int("height", state.Canvas.Height))

	h.broadcastState(s.ID, state)
	h.pushFrame(s)
	response.Success(c, "image loaded", state)
}

func (h *Handlers) handlePatchLayer(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	slot, err := editor.ParseSlot(c.Param("slot"))
	if err != nil {
		fail(c, err)
		return
	}
	var patch editor.LayerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, utils.ErrInvalidParams)
		return
	}
	layer, state, err := applyPatch(s, slot, patch)
	if err != nil {
		fail(c, err)
		return
	}
	h.broadcastState(s.ID, state)
	h.pushFrame(s)
	response.Success(c, "success", layer)
}

func applyPatch(s *session.Session, slot editor.Slot, patch editor.LayerPatch) (editor.TextLayer, editor.State, error) {
	var (
		layer editor.TextLayer
		state editor.State
	)
	err := s.Do(func(ed *editor.Editor) error {
		if err := ed.ApplyPatch(slot, patch); err != nil {
			return err
		}
		layer, _ = ed.Layer(slot)
		state = ed.Snapshot()
		return nil
	})
	return layer, state, err
}

// EventResult is the answer to one input event
type EventResult struct {
	Outcome editor.Outcome `json:"outcome"`
	Version uint64         `json:"version"`
}

func (h *Handlers) handleEvent(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var raw editor.RawEvent
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, utils.ErrInvalidParams)
		return
	}
	res, err := handleInput(s, raw)
	if err != nil {
		fail(c, err)
		return
	}
	if res.Outcome.Changed {
		h.pushFrame(s)
	}
	response.Success(c, "success", res)
}

func handleInput(s *session.Session, raw editor.RawEvent) (EventResult, error) {
	var res EventResult
	err := s.Do(func(ed *editor.Editor) error {
		out, err := ed.HandleRaw(raw)
		if err != nil {
			return err
		}
		res = EventResult{Outcome: out, Version: ed.Version()}
		return nil
	})
	return res, err
}

// frame exports the current frame under the session lock
func frame(s *session.Session) (data []byte, version uint64, err error) {
	err = s.Do(func(ed *editor.Editor) error {
		b, err := ed.Export()
		if err != nil {
			return err
		}
		data, version = b, ed.Version()
		return nil
	})
	return
}

func (h *Handlers) writeFrame(c *gin.Context, attachment bool) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	data, version, err := frame(s)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header(constants.HeaderFrameVersion, strconv.FormatUint(version, 10))
	c.Header("Cache-Control", "no-store")
	if attachment {
		c.Header("Content-Disposition", `attachment; filename="`+constants.DownloadFilename+`"`)
	}
	c.Data(http.StatusOK, constants.PNGContentType, data)
}

func (h *Handlers) handlePreview(c *gin.Context) {
	h.writeFrame(c, false)
}

func (h *Handlers) handleDownload(c *gin.Context) {
	h.writeFrame(c, true)
}

// handlePublish hands the finished artifact to the gallery
func (h *Handlers) handlePublish(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.gallery == nil {
		fail(c, errGalleryDisabled)
		return
	}
	var artifact *editor.Artifact
	err := s.Do(func(ed *editor.Editor) error {
		var err error
		artifact, err = ed.Artifact(time.Now())
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	meme, err := h.gallery.Persist(c.Request.Context(), *artifact)
	if err != nil {
		fail(c, err)
		return
	}
	response.Result(c, http.StatusCreated, http.StatusCreated, "published", meme)
}

func (h *Handlers) broadcastState(group string, state editor.State) {
	h.wsHub.BroadcastGroup(group, "", websocket.MessageTypeState, state)
}

// pushFrame sends the current PNG to every connection of the session that asked for frames
func (h *Handlers) pushFrame(s *session.Session) {
	if h.wsHub.GetGroupConnections(s.ID) == 0 {
		return
	}
	data, _, err := frame(s)
	if err != nil {
		return
	}
	h.wsHub.BroadcastGroupBinary(s.ID, "", data, func(c *websocket.Connection) bool {
		return c.Flag(frameFlag)
	})
}
