package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"github.com/vayron-digital/modulyn-one-sub003/internal/billing/fastspring"
	"go.uber.org/zap"
)

// Bodies beyond this are not webhook notifications.
const maxWebhookBody = 1 << 20

// HandleWebhook ingests one billing provider notification. The provider
// expects a plain-text body and retries anything that is not a 200, so the
// response reflects only authentication and the durable ledger write.
func (s *Server) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		s.log.Warn("failed to read webhook body", zap.Error(err))
		c.String(http.StatusBadRequest, "ERROR")
		return
	}

	params, err := fastspring.ParseBody(c.ContentType(), body)
	if err != nil {
		s.log.Warn("unparsable webhook body", zap.Error(err))
		c.String(http.StatusBadRequest, "ERROR")
		return
	}

	_, err = s.billing.IngestWebhook(c.Request.Context(), params)
	switch {
	case err == nil:
		c.String(http.StatusOK, "SUCCESS")
	case errors.Is(err, billingdomain.ErrMissingPrivateKey):
		// Misconfiguration, not a bad delivery. Surfaced as a retryable 500
		// so the notification is not lost.
		s.log.Error("webhook received without configured private key")
		c.String(http.StatusInternalServerError, "ERROR")
	case errors.Is(err, billingdomain.ErrInvalidSignature):
		c.String(http.StatusUnauthorized, "UNAUTHORIZED")
	default:
		s.log.Error("failed to record webhook delivery", zap.Error(err))
		c.String(http.StatusInternalServerError, "ERROR")
	}
}
