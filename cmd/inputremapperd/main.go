package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/input-remapper/inputremapperd/internal/config"
	"github.com/input-remapper/inputremapperd/internal/control"
	"github.com/input-remapper/inputremapperd/internal/device"
	"github.com/input-remapper/inputremapperd/internal/injector"
	"github.com/input-remapper/inputremapperd/internal/symboltable"
	"github.com/input-remapper/inputremapperd/internal/uinputdev"
)

func run() int {
	debug := flag.Bool("debug", false, "add source file:line to every log line")
	cfgPath := flag.String("config", config.DefaultPath(), "path to config.toml")
	socketOverride := flag.String("socket", "", "override the control socket path from config.toml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	if *socketOverride != "" {
		cfg.SocketPath = *socketOverride
	}

	var logOut io.Writer = os.Stderr
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("open log file %s: %v", cfg.LogPath, err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := log.New(logOut, "[inputremapperd] ", log.Ltime|log.Lmicroseconds)
	if *debug {
		logger.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	if _, err := os.ReadDir(cfg.ConfigDir); err != nil {
		logger.Printf("config dir %s: %v", cfg.ConfigDir, err)
		return 1
	}

	symbols := symboltable.New()
	if cfg.SymbolTablePath != "" {
		if err := symbols.LoadFile(cfg.SymbolTablePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Printf("load symbol table %s: %v", cfg.SymbolTablePath, err)
			return 1
		}
	}

	registry := uinputdev.New(uinputdev.ModeReal)
	defer registry.Close()

	enumerator := device.New()
	sup := injector.NewSupervisor(registry, enumerator, symbols, cfg.ConfigDir)

	ctrl := control.NewController(sup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	autoloadPath := filepath.Join(cfg.ConfigDir, "autoload.json")
	if autoloadCfg, err := injector.LoadAutoloadConfig(autoloadPath); err == nil {
		started, err := sup.Autoload(autoloadCfg)
		if err != nil {
			logger.Printf("autoload: %v", err)
		} else {
			logger.Printf("autoload: started %d injection(s)", len(started))
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Printf("autoload: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SocketPath), 0o755); err != nil {
		logger.Printf("socket dir %s: %v", filepath.Dir(cfg.SocketPath), err)
		return 1
	}
	srv, err := control.NewServer(cfg.SocketPath, ctrl, logger)
	if err != nil {
		logger.Printf("create control server: %v", err)
		return 1
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("listening on %s", cfg.SocketPath)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(sigCtx) }()

	<-sigCtx.Done()
	logger.Printf("shutting down")
	sup.StopAll()
	srv.Close()
	cancel()

	if err := <-serveErr; err != nil {
		logger.Printf("serve: %v", err)
	}
	return 0
}

func main() {
	os.Exit(run())
}
