package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"FreehandBoard/internal/config"
	"FreehandBoard/internal/engine"
	boardnet "FreehandBoard/internal/net"
	"FreehandBoard/internal/state"
	"FreehandBoard/internal/surface"
	"FreehandBoard/internal/ui"

	"fyne.io/fyne/v2/app"
	"github.com/gogpu/gg"
)

const appID = "io.github.freehandboard"

func main() {
	cfg, path, err := config.LoadDefault()
	if err != nil && path != "" {
		fmt.Fprintf(os.Stderr, "config %s: %v\n", path, err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "gg"))
	if err != nil {
		logger.Warn("no config location, using defaults", "err", err)
	}

	args := os.Args
	switch {
	case len(args) > 1 && args[1] == "browse":
		runBrowse(logger)
	case len(args) > 1 && strings.HasPrefix(args[1], boardnet.LinkScheme+"://"):
		runViewer(cfg, logger, args[1])
	default:
		runHost(cfg, logger)
	}
}

func newEngine(cfg config.Config, logger *slog.Logger) *engine.Engine {
	raster, err := surface.NewRaster(cfg.Canvas.Width, cfg.Canvas.Height)
	if err != nil {
		logger.Error("create surface", "err", err)
		os.Exit(1)
	}
	lineCap, err := surface.ParseLineCap(cfg.Canvas.LineCap)
	if err != nil {
		logger.Error("line cap", "err", err)
		os.Exit(1)
	}
	c, err := engine.ParseHexColor(cfg.Canvas.Color)
	if err != nil {
		logger.Error("color", "err", err)
		os.Exit(1)
	}
	mode, err := engine.ParseColorMode(cfg.Canvas.Mode)
	if err != nil {
		logger.Error("mode", "err", err)
		os.Exit(1)
	}
	e, err := engine.New(raster,
		engine.WithLogger(logger.With("component", "engine")),
		engine.WithLineWidth(cfg.Canvas.LineWidth),
		engine.WithLineCap(lineCap),
		engine.WithColor(c),
		engine.WithMode(mode),
		engine.WithMirror(cfg.Canvas.Mirror),
	)
	if err != nil {
		logger.Error("create engine", "err", err)
		os.Exit(1)
	}
	return e
}

func uiOptions(cfg config.Config, title, link string) ui.Options {
	return ui.Options{
		Title:        title,
		Width:        float32(cfg.Canvas.Width),
		Height:       float32(cfg.Canvas.Height),
		SaveFileName: cfg.Canvas.SaveFileName,
		ShareLink:    link,
	}
}

func runHost(cfg config.Config, logger *slog.Logger) {
	logger.Info("starting as host")
	myApp := app.NewWithID(appID)
	e := newEngine(cfg, logger)
	board := ui.NewBoardWidget(e, logger.With("component", "ui"))

	if cfg.Share.Port == 0 {
		ui.RunApp(myApp, board, uiOptions(cfg, "Freehand", ""))
		return
	}

	netLog := logger.With("component", "net")
	hub := boardnet.NewHub(e, state.NewClock(), netLog)
	e.OnSegment = hub.PublishSegment
	e.OnClear = hub.PublishClear
	defer hub.Close()

	go func() {
		if err := hub.ListenAndServe(cfg.Share.Port); err != nil {
			netLog.Error("share hub stopped", "err", err)
			board.SetStatusf("Sharing unavailable: %v", err)
		}
	}()

	if cfg.Share.Advertise {
		server, err := boardnet.Advertise(cfg.Share.Port, netLog)
		if err != nil {
			netLog.Warn("mdns advertise failed", "err", err)
		} else {
			defer server.Shutdown()
		}
	}

	hostIP, err := boardnet.GetOutgoingIP()
	if err != nil {
		netLog.Warn("no local ip", "err", err)
		hostIP = "127.0.0.1"
	}
	link := boardnet.ShareLink(hostIP, cfg.Share.Port)
	logger.Info("share link", "link", link)
	ui.RunApp(myApp, board, uiOptions(cfg, "Freehand (host)", link))
}

func runViewer(cfg config.Config, logger *slog.Logger, link string) {
	logger.Info("starting as viewer", "link", link)
	addr, err := boardnet.ParseShareLink(link)
	if err != nil {
		logger.Error("bad link", "err", err)
		os.Exit(1)
	}

	myApp := app.NewWithID(appID)
	e := newEngine(cfg, logger)
	board := ui.NewBoardWidget(e, logger.With("component", "ui"))
	netLog := logger.With("component", "net")

	var current atomic.Pointer[boardnet.Client]
	e.OnSegment = func(seg state.Segment) {
		if c := current.Load(); c != nil {
			c.PublishSegment(seg)
		}
	}
	e.OnClear = func() {
		if c := current.Load(); c != nil {
			c.PublishClear()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		dialCtx, stop := context.WithTimeout(ctx, 10*time.Second)
		client, err := boardnet.Dial(dialCtx, addr, e, state.NewClock(), netLog)
		stop()
		if err != nil {
			board.SetStatusf("Connection failed: %v", err)
			return
		}
		current.Store(client)
		board.SetStatusf("Connected to %s", addr)

		err = client.Run(ctx)
		current.Store(nil)
		if ctx.Err() == nil {
			board.SetStatusf("Disconnected from host: %v", err)
		}
	}()

	ui.RunApp(myApp, board, uiOptions(cfg, "Freehand (viewer)", ""))
}

func runBrowse(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seen := make(map[string]bool)
	err := boardnet.Browse(ctx, 3*time.Second, logger.With("component", "mdns"), func(addr string) {
		if !seen[addr] {
			seen[addr] = true
			fmt.Println(boardnet.LinkScheme + "://" + addr)
		}
	})
	if err != nil {
		logger.Error("browse failed", "err", err)
		os.Exit(1)
	}
}
