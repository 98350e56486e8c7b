package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"textback/internal/pkg/sms/dispatcher"
)

// CooldownController exposes the per-number send cooldown for diagnostics
// and administrative clearing.
type CooldownController struct {
	Dispatcher *dispatcher.Dispatcher
}

func NewCooldownController(d *dispatcher.Dispatcher) *CooldownController {
	return &CooldownController{Dispatcher: d}
}

// HandleGet reports the remaining cooldown for a number.
func (h *CooldownController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := identityFrom(c); err != nil {
			replyError(c, err)
			return
		}
		number := c.Param("number")
		if number == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "number is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		remaining, err := h.Dispatcher.TimeRemaining(ctx, number)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"number":           number,
			"remainingSeconds": int(remaining.Seconds()),
		})
	}
}

// HandleClear deletes a number's cooldown entry.
func (h *CooldownController) HandleClear() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := identityFrom(c); err != nil {
			replyError(c, err)
			return
		}
		number := c.Param("number")
		if number == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "number is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.Dispatcher.Clear(ctx, number); err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared": number})
	}
}
