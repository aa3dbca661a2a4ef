package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/service"
	"github.com/vendorly/vendorly-api/internal/webhook"
)

// WebhookHandler consumes signed identity lifecycle notifications. The
// response never carries internal error detail; that goes to the logs.
type WebhookHandler struct {
	Accounts *service.AccountService
	Verifier *webhook.Verifier
	Logger   *zap.Logger
}

func NewWebhookHandler(accounts *service.AccountService, verifier *webhook.Verifier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Accounts: accounts, Verifier: verifier, Logger: logger}
}

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID                    string `json:"id"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
		EmailAddresses        []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (e identityEvent) primaryEmail() string {
	for _, addr := range e.Data.EmailAddresses {
		if addr.ID == e.Data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Handle processes POST /webhooks/identity.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.Verifier.Verify(
		c.GetHeader("svix-id"),
		c.GetHeader("svix-timestamp"),
		c.GetHeader("svix-signature"),
		body,
	)
	if err != nil {
		if errors.Is(err, webhook.ErrMissingHeaders) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing svix headers"})
			return
		}
		h.Logger.Warn("webhook verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var event identityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
		return
	}

	switch event.Type {
	case "user.created":
		h.handleCreated(c, event)
	case "user.updated":
		h.handleUpdated(c, event)
	case "user.deleted":
		h.handleDeleted(c, event)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Unhandled event type"})
	}
}

func (h *WebhookHandler) handleCreated(c *gin.Context, event identityEvent) {
	email := event.primaryEmail()
	if email == "" || event.Data.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user data"})
		return
	}

	if _, err := h.Accounts.HandleCreated(c.Request.Context(), event.Data.ID, email); err != nil {
		h.Logger.Error("webhook user.created failed", zap.String("subject_id", event.Data.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User created"})
}

func (h *WebhookHandler) handleUpdated(c *gin.Context, event identityEvent) {
	email := event.primaryEmail()
	if email == "" || event.Data.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user data"})
		return
	}

	if err := h.Accounts.HandleUpdated(c.Request.Context(), event.Data.ID, email); err != nil {
		h.Logger.Error("webhook user.updated failed", zap.String("subject_id", event.Data.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

func (h *WebhookHandler) handleDeleted(c *gin.Context, event identityEvent) {
	if err := h.Accounts.HandleDeleted(c.Request.Context(), event.Data.ID); err != nil {
		h.Logger.Error("webhook user.deleted failed", zap.String("subject_id", event.Data.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
