package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// X-Session-IDヘッダ名
	HeaderSessionID = "X-Session-ID"

	CtxSessionIDKey = "session_id" // string
)

// SessionID はX-Session-IDヘッダを必須にするミドルウェア。
// GET /cart/total だけはクエリのsession_idも許容する。
func SessionID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := strings.TrimSpace(c.Request().Header.Get(HeaderSessionID))
			if sid == "" {
				sid = strings.TrimSpace(c.QueryParam("session_id"))
			}
			if sid == "" {
				return c.JSON(http.StatusBadRequest, errorJSON("session id is required"))
			}

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
