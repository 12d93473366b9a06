// Package cli provides the command-line interface for stickerforge.
package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/liminalpurple/stickerforge/internal/app"
	"github.com/liminalpurple/stickerforge/internal/auth"
	"github.com/liminalpurple/stickerforge/internal/config"
	"github.com/liminalpurple/stickerforge/internal/download"
	"github.com/liminalpurple/stickerforge/internal/genclient"
	"github.com/liminalpurple/stickerforge/internal/logger"
	"github.com/liminalpurple/stickerforge/internal/sticker"
	"github.com/liminalpurple/stickerforge/internal/store"
	"github.com/liminalpurple/stickerforge/internal/suggest"
)

// environment holds the long-lived collaborators shared by the commands.
type environment struct {
	cfg       *config.Config
	log       logger.Logger
	keychain  *auth.Keychain
	gen       *swappableGenerator
	orch      *app.Orchestrator
	deliverer *download.Deliverer
}

// newEnvironment loads configuration and wires every component. The
// generation client is rebuilt whenever a new API key is selected, since
// the underlying service client binds its key at construction.
func newEnvironment(ctx context.Context) (*environment, error) {
	// A .env file in the working directory is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	keychain := auth.NewKeychain(cfg.Gemini.APIKey, func(key string) error {
		cfg.Gemini.APIKey = key
		return config.Save(cfg)
	})

	gen := &swappableGenerator{}
	rebuild := func(key string) {
		client, err := genclient.New(ctx, genclient.Options{
			APIKey:       key,
			ImageModel:   cfg.Gemini.ImageModel,
			VideoModel:   cfg.Gemini.VideoModel,
			StickerSize:  cfg.Sticker.Size,
			PollInterval: time.Duration(cfg.Gemini.PollSeconds) * time.Second,
			MaxPolls:     cfg.Gemini.MaxPolls,
		}, log)
		if err != nil {
			log.Error("failed to build generation client", zap.Error(err))
			return
		}
		gen.swap(client)
	}
	if keychain.HasCredential() {
		rebuild(keychain.Credential())
	}
	keychain.OnChange(rebuild)

	kv, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	orch := app.New(app.Deps{
		Generator:  gen,
		Store:      store.NewCollectionStore(kv, log),
		Keychain:   keychain,
		Suggester:  suggest.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens),
		ImageCount: cfg.Sticker.Count,
		Log:        log,
	})

	return &environment{
		cfg:       cfg,
		log:       log,
		keychain:  keychain,
		gen:       gen,
		orch:      orch,
		deliverer: download.New(cfg.Download.Dir, log),
	}, nil
}

// openBackend creates the configured KV store.
func openBackend(cfg *config.Config) (store.KV, error) {
	switch cfg.Storage.Backend {
	case "redis":
		if cfg.Storage.Redis.Addr == "" {
			return nil, fmt.Errorf("storage backend is redis but no address is configured - set REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		return store.NewRedisKV(client), nil
	case "file", "":
		return store.NewFileKV(cfg.Storage.DataDir, cfg.Storage.QuotaBytes), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file or redis)", cfg.Storage.Backend)
	}
}

// swappableGenerator lets the active generation client be replaced when
// a new API key is selected, without the orchestrator noticing.
type swappableGenerator struct {
	mu      sync.RWMutex
	current *genclient.Client
}

func (g *swappableGenerator) swap(c *genclient.Client) {
	g.mu.Lock()
	g.current = c
	g.mu.Unlock()
}

func (g *swappableGenerator) client() (*genclient.Client, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil, &genclient.Error{Kind: genclient.KindAuth, Message: "no API key selected"}
	}
	return g.current, nil
}

func (g *swappableGenerator) GenerateImages(ctx context.Context, prompt string, count int) ([]sticker.Sticker, error) {
	c, err := g.client()
	if err != nil {
		return nil, err
	}
	return c.GenerateImages(ctx, prompt, count)
}

func (g *swappableGenerator) EditImage(ctx context.Context, src sticker.Image, instruction string) (display, source sticker.Image, err error) {
	c, err := g.client()
	if err != nil {
		return sticker.Image{}, sticker.Image{}, err
	}
	return c.EditImage(ctx, src, instruction)
}

func (g *swappableGenerator) RemoveBackground(ctx context.Context, src sticker.Image) (display, source sticker.Image, err error) {
	c, err := g.client()
	if err != nil {
		return sticker.Image{}, sticker.Image{}, err
	}
	return c.RemoveBackground(ctx, src)
}

func (g *swappableGenerator) GenerateVideo(ctx context.Context, prompt string) (uri, mimeType string, err error) {
	c, err := g.client()
	if err != nil {
		return "", "", err
	}
	return c.GenerateVideo(ctx, prompt)
}
