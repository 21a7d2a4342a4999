package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/logger"
	"github.com/ppiankov/treelint/internal/server"
)

var (
	serveAddr  string
	serveRPS   float64
	serveBurst int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis operations as a JSON HTTP API",
	Long: `Serve exposes every analysis operation over HTTP so other tooling
can call treelint without shelling out:

  GET  /v1/health
  GET  /v1/duplicates?threshold=
  GET  /v1/clusters?surname=&threshold=
  GET  /v1/persons/:id
  GET  /v1/persons/:id/relationships
  GET  /v1/persons/:id/timeline
  GET  /v1/persons/:id/coverage
  GET  /v1/timeline?min_severity=
  GET  /v1/research?root=&generations=
  GET  /v1/compare?a=&b=
  POST /v1/audit
  GET  /v1/tree/:id/validate?max_persons=

Example:
  treelint serve
  treelint serve --addr :9000 --rps 5`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: from config)")
	serveCmd.Flags().Float64Var(&serveRPS, "rps", 0, "per-client requests per second, 0 disables limiting (default: from config)")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 0, "per-client burst size (default: from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("rps") {
		cfg.Server.RequestsPerSecond = serveRPS
	}
	if cmd.Flags().Changed("burst") {
		cfg.Server.Burst = serveBurst
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	a := analyzer.New(st, cfg)
	srv := server.New(a, log, cfg.Server)

	if verbose {
		fmt.Fprintf(os.Stderr, "Cache: %s\n", cfg.Store.Path)
		fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Server.Addr)
	}
	log.Info("Starting HTTP server",
		"addr", cfg.Server.Addr,
		"mode", cfg.Server.Mode,
		"cache", cfg.Store.Path,
	)

	return srv.Run()
}
