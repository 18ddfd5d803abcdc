// Command clockping serves the Belgrade clock status page and a TCP
// readiness probe for the configured database endpoint.
//
// @title        clockping
// @version      1.0
// @description  Status page and dependency readiness probe.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/projecthelena/clockping/internal/api"
	"github.com/projecthelena/clockping/internal/clock"
	"github.com/projecthelena/clockping/internal/config"
	"github.com/projecthelena/clockping/internal/logging"
	"github.com/projecthelena/clockping/internal/version"
)

type flags struct {
	listen      string
	versionFile string
	configFile  string
	envFile     string
	showVersion bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("clockping", pflag.ContinueOnError)
	fs.StringVarP(&f.listen, "listen", "l", "", "Listen address (overrides LISTEN_ADDR)")
	fs.StringVar(&f.versionFile, "version-file", "", "Path to the version file (overrides VERSION_FILE)")
	fs.StringVarP(&f.configFile, "config", "c", os.Getenv("CONFIG_FILE"), "Optional YAML config file")
	fs.StringVar(&f.envFile, "env-file", ".env", "Optional dotenv file loaded before the environment is read")
	fs.BoolVarP(&f.showVersion, "version", "v", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// loadConfig resolves config from file, env and flags, flags winning.
func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.LoadFile(f.configFile)
	if err != nil {
		return nil, err
	}
	if f.listen != "" {
		cfg.ListenAddr = f.listen
	}
	if f.versionFile != "" {
		cfg.VersionFile = f.versionFile
	}
	return cfg, nil
}

func main() {
	logger := logging.New("clockping")

	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Fatalf("parse flags: %v", err)
	}

	// Local development convenience; real environment variables win.
	if f.envFile != "" {
		_ = godotenv.Load(f.envFile)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	versions := version.NewReader(cfg.VersionFile)
	if f.showVersion {
		fmt.Println(versions.Read())
		return
	}

	clk, err := clock.New(cfg.Timezone, cfg.CityName)
	if err != nil {
		logger.Fatalf("init clock: %v", err)
	}

	if cfg.DBEndpoint == "" {
		logger.Printf("DB_ENDPOINT not set, /readiness will report unavailable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := api.NewRouter(api.Deps{
		Config:   cfg,
		Clock:    clk,
		Versions: versions,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		// Leaves room for the readiness dial timeout.
		WriteTimeout: cfg.ProbeTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("Starting server on %s (version %s)", cfg.ListenAddr, versions.Read())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()
	logger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exiting")
}
