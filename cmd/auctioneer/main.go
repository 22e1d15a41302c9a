package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/auctioneer/adapters/events"
	"github.com/layer-3/auctioneer/adapters/signer"
	"github.com/layer-3/auctioneer/adapters/store"
	"github.com/layer-3/auctioneer/adapters/tokenizer"
	"github.com/layer-3/auctioneer/internal/config"
	"github.com/layer-3/auctioneer/internal/logger"
	"github.com/layer-3/auctioneer/internal/metrics"
	"github.com/layer-3/auctioneer/ports"
	"github.com/layer-3/auctioneer/service"
	"github.com/layer-3/auctioneer/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	serverKey, err := loadServerKey(cfg, log)
	if err != nil {
		return err
	}
	serverSigner := signer.NewEthSigner(serverKey)

	minter, err := newMinter(cfg)
	if err != nil {
		return err
	}

	var (
		tokenStore = store.NewMemoryTokenStore()
		publisher  message.Publisher
		wmLogger   = watermill.NewSlogLogger(log)
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return err
		}

		tokenStore = store.NewRedisTokenStore(redisClient, "")
		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			return err
		}
		log.Info("using redis token store and event stream")
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		log.Info("using in-memory token store and event bus")
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.NewCollector(reg)),
	}

	registry := service.NewRegistry(store.NewMemoryIdentityStore(), opts...)
	tokens := service.NewTokenManager(tokenStore, minter, cfg.TokenTTL, opts...)
	auth := service.NewAuthenticator(registry, serverSigner, signer.NewEthVerifier(), tokens, opts...)
	ledger := service.NewLedger(
		store.NewMemoryAuctionStore(),
		registry,
		events.NewWatermillPublisher(publisher, cfg.EventsTopicPrefix),
		opts...,
	)
	svc := service.NewAuctionService(registry, auth, tokens, ledger)

	gin.SetMode(cfg.GinMode)
	router := http.SetupRouter(svc, log, metrics.Handler(reg))

	log.Info("starting server",
		slog.String("addr", cfg.ListenAddr),
		slog.String("token_format", cfg.TokenFormat),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)
	return router.Run(cfg.ListenAddr)
}

func loadServerKey(cfg *config.Config, log *slog.Logger) (*ecdsa.PrivateKey, error) {
	if cfg.ServerKeyHex != "" {
		return signer.KeyFromHex(cfg.ServerKeyHex)
	}

	key, err := signer.GenerateKey()
	if err != nil {
		return nil, err
	}
	log.Warn("SERVER_KEY_HEX not set, generated an ephemeral server key")
	return key, nil
}

func newMinter(cfg *config.Config) (ports.TokenMinter, error) {
	if cfg.TokenFormat != config.TokenFormatJWT {
		return tokenizer.NewOpaqueTokenizer(), nil
	}

	// JWT signing key lives only for the process lifetime; tokens never outlive it
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return tokenizer.NewJWTTokenizer(privateKey), nil
}
