package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"match-workers/internal/cache"
	"match-workers/internal/common/config"
	"match-workers/internal/common/database"
	"match-workers/internal/common/logger"
	"match-workers/internal/repository"
	"match-workers/pkg/registry"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the tech_domains table with the registry file",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the tech_domains table to the registry file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	configPath string
	dbTimeout  time.Duration
	dryRun     bool
)

func init() {
	for _, c := range []*cobra.Command{importCmd, exportCmd} {
		c.Flags().StringVar(&configPath, "config", "", "Config file (defaults to the worker configuration lookup)")
		c.Flags().DurationVar(&dbTimeout, "timeout", 30*time.Second, "Database timeout")
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and report without writing")

	rootCmd.AddCommand(importCmd, exportCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func runImport(cmd *cobra.Command, _ []string) error {
	f, err := registry.Load(registryPath)
	if err != nil {
		return err
	}
	warnings, _ := f.Validate()
	printWarnings(cmd, warnings)
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d domains would be imported.\n", len(f.Domains))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	store := repository.NewDomainStore(pg.DB)
	if err := store.ReplaceAll(ctx, f.Domains); err != nil {
		return err
	}

	// Workers would otherwise serve the old snapshot until its TTL runs out.
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	rc := cache.NewRegistryCache(store, rdb.Client, cfg.Cache.KeyPrefix,
		time.Duration(cfg.Cache.RegistryTTL)*time.Second, logger.NewNoOpLogger())
	if err := rc.Invalidate(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: registry cache not invalidated: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d domains.\n", len(f.Domains))
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	snap, err := repository.NewDomainStore(pg.DB).Snapshot(ctx)
	if err != nil {
		return err
	}

	f := registry.New(snap.Version)
	f.Domains = snap.Domains
	if err := saveChecked(cmd, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d domains to %s.\n", len(f.Domains), registryPath)
	return nil
}
