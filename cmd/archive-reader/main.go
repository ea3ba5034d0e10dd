package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maxking/archive-reader/internal/app"
	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/log"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
	appsync "github.com/maxking/archive-reader/internal/sync"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the configuration file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logCloser, err := log.Init(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create state directory: %v\n", err)
		os.Exit(1)
	}
	s, err := store.NewSQLiteStore(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	client := hyperkitty.NewClient()
	listManager := manager.NewListManager(client, s)
	registry := manager.NewRegistry(client, s, cfg.Sync.ThreadPageSize, cfg.Sync.EmailPageSize)
	refresher := appsync.New(s, registry, time.Duration(cfg.Sync.PollIntervalSec)*time.Second)

	p := tea.NewProgram(
		app.New(s, listManager, registry, refresher),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
