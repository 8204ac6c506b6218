package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/mailer"
	"storefront/api/models"
)

type ContactHandlers struct {
	mail  mailer.Mailer
	inbox string
	log   *zap.Logger
}

func NewContactHandlers(mail mailer.Mailer, inbox string, log *zap.Logger) *ContactHandlers {
	return &ContactHandlers{mail: mail, inbox: inbox, log: log}
}

// Submit forwards the message to the company inbox, then acknowledges the
// sender. The submission counts as delivered once the inbox copy is sent.
func (h *ContactHandlers) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := bindRequired(c, &req, "All fields are required"); err != nil {
		respondError(c, h.log, err)
		return
	}
	ctx := c.Request.Context()

	notice, err := mailer.ContactNotice(h.inbox, req)
	if err == nil {
		err = h.mail.Send(ctx, notice)
	}
	if err != nil {
		respondError(c, h.log, apperr.Internal("Failed to send message", err))
		return
	}

	replied := true
	reply, err := mailer.ContactAutoReply(req)
	if err == nil {
		err = h.mail.Send(ctx, reply)
	}
	if err != nil {
		replied = false
		h.log.Warn("Failed to send contact auto-reply", zap.String("email", req.Email), zap.Error(err))
	}

	message := "Message sent successfully. Confirmation mail sent to user."
	if !replied {
		message = "Message sent successfully."
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
