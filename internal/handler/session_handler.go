package handler

import (
	"net/http"
	"time"

	"app/internal/session"

	"github.com/labstack/echo/v4"
)

// POST /session/guest
type SessionHandler struct {
	issuer *session.Issuer
}

// DI
func NewSessionHandler(issuer *session.Issuer) *SessionHandler {
	return &SessionHandler{issuer: issuer}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/session/guest", h.createGuest)
}

func (h *SessionHandler) createGuest(c echo.Context) error {
	guest, err := h.issuer.IssueGuest(time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "token generation failed"})
	}

	return c.JSON(http.StatusOK, guest)
}
