package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"go.uber.org/zap"

	"CalmCanvas/internal/config"
	"CalmCanvas/internal/engine"
	"CalmCanvas/internal/logging"
	"CalmCanvas/internal/metrics"
	"CalmCanvas/internal/net"
	"CalmCanvas/internal/ui"
)

func main() {
	configPath := flag.String("config", os.Getenv("CALMCANVAS_CONFIG"), "path to a YAML config file")
	discover := flag.Bool("discover", false, "list canvases advertised on the local network and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *discover {
		runDiscover(ctx, logger)
		return
	}
	runHost(ctx, cfg, logger)
}

func runHost(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	collector := metrics.NewCollector(cfg.Metrics.Namespace)
	doc := engine.New(engine.Options{
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		Background: cfg.Canvas.Background,
		Brush: engine.Brush{
			Color:     cfg.Brush.Color,
			Width:     cfg.Brush.Width,
			Opacity:   cfg.Brush.Opacity,
			StampSize: cfg.Brush.StampSize,
		},
		Symmetry:    cfg.Canvas.Symmetry,
		MaxSymmetry: cfg.Canvas.MaxSymmetry,
		RedoLimit:   cfg.Canvas.RedoLimit,
		Logger:      logger,
		Metrics:     collector,
	})
	logger.Info("canvas ready",
		zap.Int("width", cfg.Canvas.Width),
		zap.Int("height", cfg.Canvas.Height),
		zap.Int("symmetry", doc.Symmetry()))

	shareLink := ""
	if cfg.Bridge.Enabled {
		shareLink = startBridge(ctx, cfg, doc, collector, logger)
	}
	ui.RunApp(doc, shareLink, logger)
}

// startBridge serves the remote input bridge in the background and returns
// the address to show the user.
func startBridge(ctx context.Context, cfg *config.Config, doc *engine.Canvas, collector *metrics.Collector, logger *zap.Logger) string {
	bridge := net.NewBridge(doc, logger, collector.Handler())
	go func() {
		if err := bridge.ListenAndServe(ctx, ":"+strconv.Itoa(cfg.Bridge.Port)); err != nil {
			logger.Error("bridge stopped", zap.Error(err))
		}
	}()

	if cfg.Bridge.MDNS {
		server, err := net.Advertise(cfg.Bridge.Instance, cfg.Bridge.Port)
		if err != nil {
			logger.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			go func() {
				<-ctx.Done()
				server.Shutdown()
			}()
			logger.Info("advertising bridge", zap.String("service", net.ServiceType))
		}
	}

	ip, err := net.OutgoingIP()
	if err != nil {
		logger.Warn("could not find LAN address", zap.Error(err))
	}
	return fmt.Sprintf("http://%s:%d", ip, cfg.Bridge.Port)
}

func runDiscover(ctx context.Context, logger *zap.Logger) {
	found, err := net.Browse(ctx, 3*time.Second)
	if err != nil {
		logger.Error("discovery failed", zap.Error(err))
	}
	if len(found) == 0 {
		fmt.Println("No canvases found on the local network.")
		return
	}
	for _, addr := range found {
		fmt.Println(addr)
	}
}
