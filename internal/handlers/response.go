package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/middleware"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, dto.Envelope{Success: true, Data: data, Message: message})
}

func respondList(c *gin.Context, data any, meta *pagination.Meta) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: data, Meta: meta})
}

func respondMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: data, Message: message})
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: "Invalid request format: " + err.Error()})
}

// respondError maps service errors onto the envelope. Unexpected errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.Envelope{Success: false, Error: msg})
}

func statusFor(err error) (int, string) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrReferenced):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.As(err, &appErr) && appErr.Code > 0 && appErr.Code < http.StatusInternalServerError:
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

// currentUser returns the authenticated user id or answers 401.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.Envelope{Success: false, Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}

// parseRange reads optional YYYY-MM-DD bounds.
func parseRange(from, to string) (domain.DateRange, error) {
	var r domain.DateRange
	if strings.TrimSpace(from) != "" {
		t, err := dto.ParseDate(from)
		if err != nil {
			return r, apperrors.NewValidationError("from: %v", err)
		}
		r.From = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := dto.ParseDate(to)
		if err != nil {
			return r, apperrors.NewValidationError("to: %v", err)
		}
		r.To = &t
	}
	return r, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
