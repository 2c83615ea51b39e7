package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/swiftfind/swiftfind/internal"
	"github.com/swiftfind/swiftfind/internal/config"
)

func configPath(cmd *cli.Command) (string, error) {
	if path := cmd.String("config"); path != "" {
		return path, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(internal.WithConfig(cfg))
}

func rebuild(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	report, err := internal.RebuildOnce(internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	for _, p := range report.Providers {
		if p.Err != "" {
			fmt.Printf("%-16s failed: %s\n", p.Provider, p.Err)
			continue
		}
		fmt.Printf("%-16s %d items in %dms\n", p.Provider, p.Discovered, p.ElapsedMS)
	}
	fmt.Printf("indexed %d, removed %d\n", report.IndexedTotal, report.RemovedTotal)
	return nil
}

func search(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search needs a query")
	}
	results, err := internal.SearchOnce(query, int(cmd.Int("limit")), internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-10s %-40s %s\n", r.Kind, r.Title, r.Path)
	}
	return nil
}

func template(_ context.Context, cmd *cli.Command) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	cfg := config.NewDefaultConfig(filepath.Dir(path))
	if err := config.WriteTemplate(cfg, path); err != nil {
		return err
	}
	fmt.Printf("wrote starter config to %s\n", path)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "swiftfind",
		Usage:  "Keyboard-driven launcher with an indexed catalog of apps, files, actions and clipboard history",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<user config dir>/swiftfind/config.json",
				Sources:     cli.EnvVars("SWIFTFIND_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "rebuild",
				Usage:  "Rebuild the search catalog and print per-provider results",
				Action: rebuild,
			},
			{
				Name:      "search",
				Usage:     "Run one query against a freshly built catalog",
				ArgsUsage: "<query>",
				Action:    search,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results to print",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the launcher tools over stdio for MCP clients",
				Action: mcp,
			},
			{
				Name:   "template",
				Usage:  "Write a commented starter config and exit",
				Action: template,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
