package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/middleware"
	"github.com/harentsoaR/medicore-api/internal/services"
)

func (h *Handler) SendMessage(c *gin.Context) {
	var in services.MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	msg, err := h.Messages.Send(c.Request.Context(), currentUser(c), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Message Sent!",
		"data":    msg,
	})
}

func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.Messages.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}
