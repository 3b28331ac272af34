// Command replycached serves the semantic response cache over HTTP.
// It constructs one explicit cache instance from configuration and
// hands it to the API server; there is no hidden global state.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/tripline-ai/replycache/internal/api"
	"github.com/tripline-ai/replycache/pkg/cache"
	"github.com/tripline-ai/replycache/pkg/observability"
)

var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
		port        = flag.Int("port", 0, "Port to listen on (overrides config)")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("replycached v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	logger := observability.NewStandardLogger("replycached").
		WithLevel(observability.ParseLogLevel(*logLevel))

	v := viper.New()
	v.SetConfigFile(*configFile)
	v.SetEnvPrefix("REPLYCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("could not read config file, using defaults", map[string]interface{}{
			"file":  *configFile,
			"error": err.Error(),
		})
	}

	cacheConfig := cache.LoadConfigFromViper(v)
	responseCache, err := cache.New(cacheConfig, logger.WithPrefix("cache"))
	if err != nil {
		logger.Error("invalid cache configuration", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	logger.Info("replycached starting", map[string]interface{}{
		"version":              version,
		"max_entries":          cacheConfig.MaxEntries,
		"ttl":                  cacheConfig.TTL.String(),
		"similarity_threshold": cacheConfig.SimilarityThreshold,
	})

	limiterConfig := api.DefaultRateLimiterConfig()
	if v.IsSet("server.rate_limit.client_rps") {
		limiterConfig.ClientRPS = v.GetInt("server.rate_limit.client_rps")
	}
	if v.IsSet("server.rate_limit.client_burst") {
		limiterConfig.ClientBurst = v.GetInt("server.rate_limit.client_burst")
	}
	limiter := api.NewRateLimiter(limiterConfig)
	defer limiter.Close()

	server := api.NewServer(responseCache, logger.WithPrefix("api"))

	listenPort := v.GetInt("server.port")
	if listenPort == 0 {
		listenPort = 8080
	}
	if *port != 0 {
		listenPort = *port
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", listenPort),
		Handler:           server.Router(limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received shutdown signal", map[string]interface{}{"signal": sig.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("shutdown complete", nil)
}
