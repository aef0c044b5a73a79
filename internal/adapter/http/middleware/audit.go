package middleware

import (
	"net/http"

	"wallet-console/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Audited actions.
const (
	AuditSignUp   = "SIGNUP"
	AuditLogin    = "LOGIN"
	AuditTopUp    = "TOPUP"
	AuditTransfer = "TRANSFER"
	AuditExchange = "EXCHANGE"
)

// AuditLog writes one audit entry per successful write request. Reads and
// failures are skipped.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 || c.Request.Method != http.MethodPost {
			return
		}

		action := mapPathToAction(c.FullPath())
		if action == "" {
			return
		}

		event := log.Info().
			Str("audit_action", action).
			Str("request_id", c.GetString(response.CtxRequestID)).
			Str("client_ip", c.ClientIP())
		if id, ok := UserID(c); ok {
			event = event.Int64("user_id", id)
		}
		event.Msg("audit")
	}
}

func mapPathToAction(route string) string {
	switch route {
	case "/auth/signup":
		return AuditSignUp
	case "/auth/login":
		return AuditLogin
	case "/user/top-up":
		return AuditTopUp
	case "/user/transfer":
		return AuditTransfer
	case "/user/exchange":
		return AuditExchange
	default:
		return ""
	}
}
