package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/zoomer-grok/internal/ai"
	"github.com/keshon/zoomer-grok/internal/command"
	"github.com/keshon/zoomer-grok/internal/config"
	"github.com/keshon/zoomer-grok/internal/discord"
	"github.com/keshon/zoomer-grok/internal/logging"
	"github.com/keshon/zoomer-grok/internal/media"
	"github.com/keshon/zoomer-grok/internal/mind"
	"github.com/keshon/zoomer-grok/internal/storage"
	"github.com/keshon/zoomer-grok/pkg/cmd"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("zoomer-grok stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()
	logger.Info().Str("provider", cfg.AIProvider).Msg("starting zoomer-grok")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := cfg.Mind()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.StoragePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	clock := clockwork.NewRealClock()
	rng := mind.NewTimeSeededRand()
	ledger, err := mind.NewLedger(store, settings.Ledger, rng)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	provider, err := ai.NewProvider(ctx, ai.Options{
		Provider:        cfg.AIProvider,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		Temperature:     cfg.AITemperature,
		MaxOutputTokens: cfg.AIMaxOutputTokens,
		PollinationsURL: cfg.PollinationsURL,
		HTTPClient:      httpClient,
	})
	if err != nil {
		return err
	}
	gateway := ai.NewGateway(provider, cfg.AITimeout)
	if !gateway.Enabled() {
		logger.Warn().Msg("⚠️ GEMINI_API_KEY is missing, the bot will stay silent")
	}

	quota := mind.NewWindowLimiter(clock, cfg.MediaHourlyLimit, cfg.MediaWindow)
	giphy := media.NewGiphy(media.GiphyOptions{APIKey: cfg.GiphyAPIKey, Rating: cfg.GiphyRating}, httpClient)
	if !giphy.Enabled() {
		logger.Warn().Msg("GIPHY_API_KEY is missing, media directives will be dropped")
	}

	bot, platform, err := discord.NewBot(cfg, logger)
	if err != nil {
		return err
	}

	runner := mind.NewRunner(settings, mind.Deps{
		Platform:  platform,
		Generator: gateway,
		Media:     media.NewGateway(giphy, quota, logger),
		Quota:     quota,
		Ledger:    ledger,
		Clock:     clock,
		Rand:      rng,
		Log:       logger,
	})

	registry := cmd.NewRegistry()
	command.RegisterDefaults(registry, command.WithCommandLogger(logger))
	bot.Attach(runner, registry)

	sched, err := mind.NewScheduler(ctx, runner, clock, logging.NewGocronLogger(logger))
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("zoomer-grok exited cleanly")
	return nil
}
