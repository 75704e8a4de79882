package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipesnap/backend/internal/logging"
	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// errorStatus maps service errors to an HTTP status and, for the
// user-facing cases, the notice to show
func errorStatus(err error) (int, *types.Notice) {
	switch {
	case errors.Is(err, service.ErrNoPhoto):
		notice := types.NoticeNoPhoto
		return http.StatusBadRequest, &notice
	case errors.Is(err, service.ErrInvalidDataURI):
		return http.StatusBadRequest, nil
	case errors.Is(err, service.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge, nil
	case errors.Is(err, service.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, nil
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrHistoryNotFound),
		errors.Is(err, service.ErrPhotoNotArchived):
		return http.StatusNotFound, nil
	case errors.Is(err, service.ErrNoRecipes):
		notice := types.NoticeNoRecipes
		return http.StatusBadGateway, &notice
	case errors.Is(err, service.ErrSuggestionFailed):
		notice := types.NoticeSuggestionFailed
		return http.StatusBadGateway, &notice
	default:
		return http.StatusInternalServerError, nil
	}
}

func respondError(c *gin.Context, err error) {
	respondErrorWithSession(c, err, nil)
}

func respondErrorWithSession(c *gin.Context, err error, state *types.SessionState) {
	status, notice := errorStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		message = "internal server error"
	}
	if notice != nil && status == http.StatusBadGateway {
		// upstream details stay in the logs
		message = notice.Description
	}

	c.JSON(status, types.ErrorResponse{
		Error:   message,
		Notice:  notice,
		Session: state,
	})
}
