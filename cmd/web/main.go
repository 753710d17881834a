package main

import (
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"miroteka-web/core"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := core.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logCloser, err := core.SetupLogging(cfg, "web.log")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logging")
	}
	defer logCloser.Close()

	prom := core.NewPromObserver()
	observers := core.Observers{prom}

	var stats *core.RedisStats
	if cfg.RedisURL != "" {
		redisClient, err := core.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisClient.Close()
		stats = core.NewRedisStats(redisClient)
		defer stats.Close()
		observers = append(observers, stats)
	}

	gwCfg := cfg.Gateway()
	gwCfg.Observer = observers
	gw := core.NewGateway(gwCfg)

	// Gorilla cookie store for the CSRF session.
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))

	router := core.NewRouter(cfg, store, gw, prom, stats)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("addr", addr).Str("backend", gw.Origin()).Bool("breaker", cfg.BreakerEnabled).Msg("starting web server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
