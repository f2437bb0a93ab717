package handlers

import (
	"errors"
	"net/http"

	"github.com/code-100-precent/LingMeme/internal/editor"
	"github.com/code-100-precent/LingMeme/internal/session"
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errGalleryDisabled = &utils.Error{Code: http.StatusServiceUnavailable, Message: "gallery is not configured"}

// httpError maps domain errors onto status-carrying errors
func httpError(err error) *utils.Error {
	var ue *utils.Error
	if errors.As(err, &ue) {
		return ue
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return utils.NewError(http.StatusNotFound, session.ErrSessionNotFound.Error())
	case errors.Is(err, editor.ErrImageDecode):
		return utils.NewError(http.StatusBadRequest, editor.ErrImageDecode.Error())
	case errors.Is(err, editor.ErrExportWithoutImage):
		return utils.NewError(http.StatusBadRequest, editor.ErrExportWithoutImage.Error())
	case errors.Is(err, editor.ErrUnknownSample):
		return utils.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, editor.ErrRemoteDisabled):
		return utils.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, editor.ErrUnknownSlot),
		errors.Is(err, editor.ErrUnknownEvent),
		errors.Is(err, editor.ErrInvalidNumber),
		errors.Is(err, editor.ErrInvalidColor),
		errors.Is(err, editor.ErrEmptySource):
		return utils.NewError(http.StatusBadRequest, err.Error())
	case errors.As(err, &tooLarge):
		return utils.ErrPayloadTooLarge
	}
	return utils.NewError(http.StatusInternalServerError, "internal server error")
}

// fail renders err through the response envelope
func fail(c *gin.Context, err error) {
	he := httpError(err)
	if he.Code >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(constants.RequestIDField)),
			zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, he)
}
