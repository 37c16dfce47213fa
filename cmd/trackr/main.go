package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/edgy1/trackr/internal/config"
	"github.com/edgy1/trackr/internal/irc"
	"github.com/edgy1/trackr/internal/logging"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Command line flags
	foreground := flag.Bool("x", false, "Run in foreground (don't daemonize)")
	configPath := flag.String("c", "./config.yaml", "Path to configuration file")
	showVersion := flag.Bool("v", false, "Show version information and exit")
	showVersionLong := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	// Show version and exit
	if *showVersion || *showVersionLong {
		fmt.Printf("trackr version %s\n", version)
		fmt.Printf("Built: %s\n", buildDate)
		fmt.Printf("Commit: %s\n", gitCommit)
		os.Exit(0)
	}

	// Set version info in irc package
	irc.Version = version
	irc.BuildDate = buildDate
	irc.GitCommit = gitCommit

	// Daemonize unless -x flag is set
	if !*foreground {
		daemonize()
		return
	}

	// Write PID file
	if err := writePIDFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not write PID file: %v\n", err)
	}

	// Run the bot
	run(*configPath)
}

// daemonize re-execs the process detached from the terminal
func daemonize() {
	cmd := exec.Command(os.Args[0], append(os.Args[1:], "-x")...)
	cmd.Env = append(os.Environ(), "TRACKR_DAEMON=1")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fork: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Now becoming a daemon\nMy pid is %d, this has been written to pid.txt\n", cmd.Process.Pid)

	// Parent exits
	os.Exit(0)
}

func writePIDFile() error {
	pid := os.Getpid()
	return os.WriteFile("pid.txt", []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

func run(configPath string) {
	// Make config path absolute
	if !filepath.IsAbs(configPath) {
		wd, _ := os.Getwd()
		configPath = filepath.Join(wd, configPath)
	}

	// Load configuration; a bad config is fatal
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create data directory")
	}

	// Create IRC client
	client, err := irc.NewClient(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create IRC client")
	}

	// Set up shutdown handler
	client.OnShutdown = func() {
		os.Exit(0)
	}

	// Signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Stringer("signal", sig).Msg("shutting down")
		client.Quit("Received shutdown signal")
		os.Exit(0)
	}()

	// Connect and run
	logger.Info().Str("server", cfg.Server).Int("port", cfg.Port).Msg("connecting")
	if err := client.Connect(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}

	logger.Info().Msg("connected, entering main loop")
	client.Loop()
}
