package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"portal_backend/database"
	"portal_backend/internal/app"
	"portal_backend/internal/config"
	"portal_backend/internal/logger"
	"portal_backend/internal/regions"
)

var (
	seedEmail    string
	seedPassword string
	searchLimit  int
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Operate the portal backend",
	Long: `portalctl runs and maintains the portal backend.

Configuration comes from .env, CONFIG_PATH (default config/config.yaml)
and environment variables, exactly as for the web server.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, relay socket and background workers",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the platform admin account if it does not exist",
	Long: `Create the platform admin account.

Email and password default to FIRST_ADMIN_EMAIL and FIRST_ADMIN_PASSWORD.`,
	RunE: runSeedAdmin,
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspect the region dataset",
}

var regionsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search regions by name or code",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRegionsSearch,
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "admin email (overrides FIRST_ADMIN_EMAIL)")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "admin password (overrides FIRST_ADMIN_PASSWORD)")
	regionsSearchCmd.Flags().IntVar(&searchLimit, "limit", regions.DefaultLimit, "maximum number of results")

	regionsCmd.AddCommand(regionsSearchCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, seedAdminCmd, regionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Server.Env)
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx, cfg)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runSeedAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if seedEmail != "" {
		cfg.FirstAdminEmail = seedEmail
	}
	if seedPassword != "" {
		cfg.FirstAdminPassword = seedPassword
	}
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		return fmt.Errorf("admin email and password are required")
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	a, err := app.New(context.Background(), cfg, db)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.SeedFirstAdmin()
}

func runRegionsSearch(cmd *cobra.Command, args []string) error {
	index, err := regions.Load(os.Getenv("REGIONS_DATASET"))
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")

	out := cmd.OutOrStdout()
	results := index.Search(query, searchLimit)
	if len(results) == 0 {
		fmt.Fprintln(out, "no regions found")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-14s %-12s %-40s %d\n", r.Code, r.Type, r.Name, r.Score)
	}
	return nil
}
