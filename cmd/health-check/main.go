// Package main provides a standalone health checker for container health checks
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/recipewise/server/internal/infrastructure/config"
	"github.com/recipewise/server/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

type healthResponse struct {
	Status string                     `json:"status"`
	Checks map[string]json.RawMessage `json:"checks"`
}

func main() {
	url := flag.String("url", "", "Health endpoint URL, defaults to the ops server /readyz")
	configPath := flag.String("config", "", "Configuration file path")
	timeout := flag.Duration("timeout", 5*time.Second, "Request timeout")
	allowDegraded := flag.Bool("allow-degraded", true, "Treat a degraded service as healthy")
	retries := flag.Int("retry", 0, "Number of retries on failure")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	level := "error"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(exitCodeError)
	}
	defer func() { _ = log.Sync() }()

	target := *url
	if target == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("Failed to load configuration", zap.Error(err))
			os.Exit(exitCodeError)
		}
		target = fmt.Sprintf("http://127.0.0.1:%d/readyz", cfg.Monitoring.MetricsPort)
	}

	client := &http.Client{Timeout: *timeout}
	for attempt := 0; ; attempt++ {
		status, err := checkHealth(client, target)
		if err == nil && (status == "healthy" || (*allowDegraded && status == "degraded")) {
			log.Debug("Service healthy", zap.String("url", target), zap.String("status", status))
			os.Exit(exitCodeSuccess)
		}
		log.Warn("Health check failed",
			zap.String("url", target),
			zap.String("status", status),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if attempt >= *retries {
			os.Exit(exitCodeFailure)
		}
		time.Sleep(time.Second)
	}
}

func checkHealth(client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	return body.Status, nil
}
