package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/reservodojo/trainer/internal/config"
	"github.com/reservodojo/trainer/internal/generator"
	"github.com/reservodojo/trainer/internal/logger"
	"github.com/reservodojo/trainer/internal/tasklog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory %s: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	// The UI owns stdout, so process logs go to a file in the data dir.
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "trainer.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logFile)

	model, err := config.LoadModel(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Property config is unusable, no session was started:\n\n%v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sessionID := uuid.New()
	logWriter, err := tasklog.Open(filepath.Join(cfg.DataDir, "logs"), sessionID, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session log: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logWriter.Close() // Ignore error in defer
	}()

	gen := generator.New(model, seed, log)
	log.Info("Starting training session",
		"session_id", sessionID,
		"seed", seed,
		"config", cfg.ConfigPath,
		"session_log", logWriter.Path())

	ui, err := NewSessionUI(model, gen, logWriter, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate the first task: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	if m, ok := final.(SessionUI); ok {
		if m.fatal != nil {
			fmt.Fprintf(os.Stderr, "Session aborted: %v\n", m.fatal)
			os.Exit(1)
		}
		fmt.Printf("Session complete: %d finished, %d skipped.\nSession log: %s\n",
			m.finished, m.skipped, logWriter.Path())
	}
}
