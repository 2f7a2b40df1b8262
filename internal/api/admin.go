package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/sommelier/internal/telegram"
)

// webhook accepts one update from Telegram. The secret path segment must
// match the configured webhook secret.
func (s *Server) webhook(c *gin.Context) {
	if s.updates == nil {
		c.String(http.StatusServiceUnavailable, "bot is not configured")
		return
	}
	if s.opts.WebhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(s.opts.WebhookSecret)) != 1 {
		c.String(http.StatusNotFound, "not found")
		return
	}
	var u tgbotapi.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		s.logger.Warn("malformed webhook update", "error", err)
		c.String(http.StatusBadRequest, "bad update")
		return
	}
	s.updates.HandleUpdate(c.Request.Context(), u)
	c.String(http.StatusOK, "OK")
}

// WebhookEndpoint returns the public URL Telegram should post updates to.
func WebhookEndpoint(baseURL, secret string) string {
	return strings.TrimRight(baseURL, "/") + "/webhook/" + secret
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"sessions": s.learning.Sessions().Len(),
	}
	if s.catalog != nil {
		loaded, err := s.catalog.Status()
		if !loaded.IsZero() {
			resp["catalogLoadedAt"] = loaded
		}
		if err != nil {
			resp["catalogError"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

type setWebhookRequest struct {
	URL string `json:"url"`
}

func (s *Server) setWebhook(c *gin.Context) {
	if !s.requireBot(c) {
		return
	}
	var req setWebhookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}
	base := req.URL
	if base == "" {
		base = s.opts.WebhookURL
	}
	if base == "" || s.opts.WebhookSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook url and secret must be configured"})
		return
	}
	endpoint := WebhookEndpoint(base, s.opts.WebhookSecret)
	if err := telegram.SetWebhook(s.bot, endpoint); err != nil {
		s.logger.Warn("set webhook failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("webhook set", "admin", c.GetString("admin"), "url", base)
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": base})
}

type deleteWebhookRequest struct {
	DropPending bool `json:"dropPending"`
}

func (s *Server) deleteWebhook(c *gin.Context) {
	if !s.requireBot(c) {
		return
	}
	var req deleteWebhookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}
	if err := telegram.DeleteWebhook(s.bot, req.DropPending); err != nil {
		s.logger.Warn("delete webhook failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("webhook deleted", "admin", c.GetString("admin"), "drop_pending", req.DropPending)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) webhookInfo(c *gin.Context) {
	if !s.requireBot(c) {
		return
	}
	info, err := s.bot.GetWebhookInfo()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	// The registered URL carries the secret.
	url := info.URL
	if s.opts.WebhookSecret != "" {
		url = strings.ReplaceAll(url, s.opts.WebhookSecret, "***")
	}
	resp := gin.H{
		"url":                  url,
		"pendingUpdateCount":   info.PendingUpdateCount,
		"maxConnections":       info.MaxConnections,
		"lastErrorMessage":     info.LastErrorMessage,
		"hasCustomCertificate": info.HasCustomCertificate,
	}
	if info.LastErrorDate > 0 {
		resp["lastErrorDate"] = time.Unix(int64(info.LastErrorDate), 0).UTC()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) botStatus(c *gin.Context) {
	if !s.requireBot(c) {
		return
	}
	me, err := s.bot.GetMe()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{
		"bot":      gin.H{"id": me.ID, "username": me.UserName, "name": me.FirstName},
		"sessions": s.learning.Sessions().Len(),
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	}
	if n, err := s.learning.UserCount(c.Request.Context()); err == nil {
		resp["users"] = n
	} else {
		s.logger.Warn("count users failed", "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) refreshCatalog(c *gin.Context) {
	if s.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalogue admin is not configured"})
		return
	}
	n, err := s.catalog.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": n})
}

func (s *Server) requireBot(c *gin.Context) bool {
	if s.bot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bot is not configured"})
		return false
	}
	return true
}
