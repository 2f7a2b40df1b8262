// Package app builds the service graph from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/sommelier/internal/achievements"
	"github.com/abhisek/sommelier/internal/analytics"
	"github.com/abhisek/sommelier/internal/api"
	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/challenges"
	"github.com/abhisek/sommelier/internal/config"
	"github.com/abhisek/sommelier/internal/learning"
	"github.com/abhisek/sommelier/internal/llm"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/rewards"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
	"github.com/abhisek/sommelier/internal/telegram"
)

// App holds every long-lived service.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Catalog  *catalog.Store
	Sessions *session.Store
	Learning *learning.Service
	Shop     *rewards.Shop
	Provider llm.Provider // nil when no LLM is configured
}

// OpenStore opens the database named by the config, or the default path.
func OpenStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.DB.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// NewCatalog builds the catalogue store, reading the sheet when configured.
func NewCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Store, error) {
	var loader catalog.Loader
	if cfg.Sheets.Enabled() {
		l, err := catalog.NewSheetLoader(ctx, catalog.SheetConfig{
			SpreadsheetID: cfg.Sheets.SpreadsheetID,
			APIKey:        cfg.Sheets.APIKey,
			Ranges:        cfg.Sheets.Ranges,
			BaseURL:       cfg.Sheets.BaseURL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("sheet loader: %w", err)
		}
		loader = l
	} else {
		logger.Warn("no catalogue sheet configured, serving built-in drinks")
	}
	return catalog.NewStore(loader, catalog.Options{
		TTL:         cfg.Cache.CatalogueTTL.Duration,
		FallbackTTL: cfg.Cache.FallbackTTL.Duration,
		CacheSize:   cfg.Cache.CatalogueSize,
	}, logger)
}

// New opens the store and wires the learning services. The caller owns
// the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, Store: st}
	if err := a.wire(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	cat, err := NewCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	a.Catalog = cat

	provider, err := llm.NewProvider(ctx, cfg.LLM, a.Store, logger)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	a.Provider = provider
	if provider == nil {
		logger.Warn("no LLM configured, using template questions and the consultation apology")
	}

	an, err := analytics.NewService(a.Store, cfg.Cache.AnalyticsSize, logger)
	if err != nil {
		return err
	}
	consultant, err := learning.NewConsultant(provider, learning.ConsultOptions{
		CacheSize: cfg.Cache.ConsultationSize,
		TTL:       cfg.Cache.ConsultationTTL.Duration,
	}, logger)
	if err != nil {
		return err
	}

	location, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := challenges.NewClock(location)
	seed := uint64(time.Now().UnixNano())
	templates := questiongen.NewTemplateGenerator(seed)
	var smart questiongen.Generator
	if provider != nil {
		smart = questiongen.NewLLM(provider, questiongen.DefaultConfig(), templates)
	}

	a.Sessions = session.NewStore(cfg.Cache.SessionTTL.Duration, logger)
	a.Learning = learning.New(learning.Deps{
		Repo:         a.Store,
		Catalogue:    cat,
		Templates:    templates,
		LLM:          smart,
		Sessions:     a.Sessions,
		Planner:      session.NewPlanner(seed),
		Analytics:    an,
		Achievements: achievements.NewEngine(a.Store, logger),
		Challenges:   challenges.NewEngine(a.Store, clock, logger),
		Consultant:   consultant,
		Clock:        clock,
		Logger:       logger,
	})

	a.Shop = rewards.NewShop(a.Store, logger)
	if err := a.Shop.Seed(ctx); err != nil {
		return fmt.Errorf("seed rewards: %w", err)
	}
	logger.Debug("services wired", "timezone", location.String(), "llm", provider != nil)
	return nil
}

// BotAPI connects to Telegram with the configured token.
func (a *App) BotAPI() (*tgbotapi.BotAPI, error) {
	if a.Config.Bot.Token == "" {
		return nil, errors.New("bot token is not configured")
	}
	bot, err := tgbotapi.NewBotAPI(a.Config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return bot, nil
}

// Bot builds the update router sending through botAPI.
func (a *App) Bot(botAPI *tgbotapi.BotAPI) *telegram.Bot {
	out := telegram.NewDispatcher(botAPI, a.Config.Bot.SendRate, a.Logger)
	return telegram.NewBot(a.Learning, a.Shop, a.Catalog, out, telegram.Options{
		WebAppURL: a.Config.Bot.WebAppURL,
		IsAdmin:   a.Config.IsAdmin,
	}, a.Logger)
}

// Server builds the HTTP API. bot and botAPI may be nil.
func (a *App) Server(bot *telegram.Bot, botAPI *tgbotapi.BotAPI) *api.Server {
	d := api.Deps{Learning: a.Learning, Catalog: a.Catalog, Logger: a.Logger}
	if bot != nil {
		d.Updates = bot
	}
	if botAPI != nil {
		d.Bot = botAPI
	}
	return api.New(d, api.Options{
		AllowedOrigins:    a.Config.HTTP.AllowedOrigins,
		AdminSecret:       a.Config.HTTP.AdminSecret,
		WebhookSecret:     a.Config.Bot.WebhookSecret,
		WebhookURL:        a.Config.Bot.WebhookURL,
		RequestsPerMinute: a.Config.HTTP.RequestsPerMinute,
	})
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
