// Package api serves the web front-end JSON API, the Telegram webhook and
// the admin endpoints.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/sommelier/internal/learning"
	"github.com/abhisek/sommelier/internal/telegram"
)

// UpdateHandler processes one Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update)
}

// CatalogueAdmin reports on and reloads the catalogue.
type CatalogueAdmin interface {
	Refresh(ctx context.Context) (int, error)
	Status() (time.Time, error)
}

// Options configures a Server.
type Options struct {
	AllowedOrigins    []string
	AdminSecret       string
	WebhookSecret     string
	WebhookURL        string // public base URL; the secret path is appended
	RequestsPerMinute int
}

// Server is the HTTP surface of the bot.
type Server struct {
	learning *learning.Service
	updates  UpdateHandler
	bot      telegram.WebhookAPI
	catalog  CatalogueAdmin
	opts     Options
	limiter  *clientLimiter
	logger   *slog.Logger
	started  time.Time
}

// Deps wires a Server. Updates, Bot and Catalog may be nil; the endpoints
// that need them then answer 503.
type Deps struct {
	Learning *learning.Service
	Updates  UpdateHandler
	Bot      telegram.WebhookAPI
	Catalog  CatalogueAdmin
	Logger   *slog.Logger
}

// New creates a Server.
func New(d Deps, opts Options) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Server{
		learning: d.Learning,
		updates:  d.Updates,
		bot:      d.Bot,
		catalog:  d.Catalog,
		opts:     opts,
		limiter:  newClientLimiter(opts.RequestsPerMinute, 0),
		logger:   d.Logger,
		started:  time.Now(),
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.health)
	r.POST("/webhook/:secret", s.webhook)

	web := r.Group("", s.rateLimit())
	{
		web.GET("/user-stats", s.userStats)
		web.GET("/user-achievements", s.userAchievements)
		web.GET("/daily-challenges", s.dailyChallenges)
		web.GET("/drinks", s.drinks)
		web.GET("/leaderboard", s.leaderboard)
		web.POST("/ai-consultation", s.consultation)
		web.POST("/start-quick-test", s.startQuickTest)
		web.POST("/get-test-question", s.getTestQuestion)
		web.POST("/submit-test-answer", s.submitTestAnswer)
	}

	admin := r.Group("", s.requireAdmin())
	{
		admin.POST("/set-webhook", s.setWebhook)
		admin.POST("/delete-webhook", s.deleteWebhook)
		admin.GET("/bot-status", s.botStatus)
		admin.GET("/webhook-info", s.webhookInfo)
		admin.POST("/refresh-catalog", s.refreshCatalog)
	}
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
