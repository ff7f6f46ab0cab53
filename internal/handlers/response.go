package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, dto.OK(data))
}

// respondError writes the error envelope. Internal errors are logged at error
// level and masked, everything else is a client problem and logged as a warning.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.String("kind", string(apperrors.KindOf(err))))
	}
	c.JSON(status, dto.Fail(err))
}

// actorFromContext returns the authenticated user id, writing a 401 when absent.
func actorFromContext(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.FailWith(apperrors.KindUnauthorized, "Unauthorized"))
		return "", false
	}
	return userID, true
}

func bindJSON(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, logger, "Failed to bind JSON", dto.BindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, logger *slog.Logger, params any) bool {
	if err := c.ShouldBindQuery(params); err != nil {
		respondError(c, logger, "Failed to bind query parameters", dto.BindingError(err))
		return false
	}
	return true
}
