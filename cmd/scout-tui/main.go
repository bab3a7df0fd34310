// Command scout-tui is the terminal job map. It searches the scout API,
// draws the clusters as a live force layout and takes drag, click and
// shift-click gestures from the mouse. With -watch it instead renders the
// frames another scout-tui broadcasts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/scout/pkg/broadcast"
	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/config"
	"github.com/dd0wney/scout/pkg/explorer"
	"github.com/dd0wney/scout/pkg/fetcher"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/pubsub"
	"github.com/dd0wney/scout/pkg/scheduler"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	apiURL := flag.String("api", "", "scout API base URL (overrides config)")
	query := flag.String("query", "", "search to run on start")
	watch := flag.String("watch", "", "render frames broadcast at this address instead of exploring")
	broadcastAddr := flag.String("broadcast", "", "broadcast frames on this address")
	logPath := flag.String("log", "", "write JSON logs to this file")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	flag.Parse()

	if err := run(*configPath, *apiURL, *query, *watch, *broadcastAddr, *logPath, *metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "scout-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, apiURL, query, watch, broadcastAddr, logPath, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.Client.APIURL = apiURL
	}
	if broadcastAddr != "" {
		cfg.Broadcast.Enabled = true
		cfg.Broadcast.Addr = broadcastAddr
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.NewJSONLogger(logOut, cfg.Level())
	registry := metrics.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if metricsAddr != "" {
		go serveMetrics(ctx, metricsAddr, registry, logger)
	}

	frames := pubsub.New[clusters.Frame](pubsub.DefaultBuffer)
	defer frames.Shutdown()

	var m *model
	if watch != "" {
		m, err = watchModel(ctx, watch, frames, logger, registry)
	} else {
		m, err = exploreModel(ctx, cfg, query, frames, logger, registry)
	}
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	if m.explorer != nil {
		m.explorer.Stop()
		m.loop.Stop()
	}
	return err
}

func exploreModel(ctx context.Context, cfg *config.Config, query string, frames *pubsub.PubSub[clusters.Frame], logger logging.Logger, registry *metrics.Registry) (*model, error) {
	client := fetcher.NewClient(fetcher.Options{
		BaseURL: cfg.Client.APIURL,
		Timeout: cfg.Client.Timeout,
		Logger:  logger,
		Metrics: registry,
	})

	if cfg.Broadcast.Enabled {
		pub, err := broadcast.NewPublisher(cfg.Broadcast.Addr, logger, registry)
		if err != nil {
			return nil, err
		}
		sub, err := frames.Subscribe(ctx, pubsub.TopicFrames)
		if err != nil {
			pub.Close()
			return nil, err
		}
		go func() {
			defer pub.Close()
			if err := pub.Forward(ctx, sub); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("broadcast stopped", logging.Error(err))
			}
		}()
	}

	loop := scheduler.NewLoop(logger)
	m := newModel(loop, client, frames, cfg.Explorer, explorer.Options{
		Logger:  logger,
		Metrics: registry,
	})
	m.explorer.Start()
	if query != "" {
		m.searchInput.SetValue(query)
		m.explorer.Search(query)
	}
	return m, nil
}

func watchModel(ctx context.Context, addr string, frames *pubsub.PubSub[clusters.Frame], logger logging.Logger, registry *metrics.Registry) (*model, error) {
	w, err := broadcast.Dial(addr, logger, registry)
	if err != nil {
		return nil, err
	}
	sub, err := frames.Subscribe(ctx, pubsub.TopicFrames)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := w.Run(ctx, frames); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watch stopped", logging.Error(err))
		}
	}()
	return newWatchModel(sub, logger), nil
}

func serveMetrics(ctx context.Context, addr string, registry *metrics.Registry, logger logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", logging.Error(err))
	}
}
