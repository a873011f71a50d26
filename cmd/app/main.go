package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/leadsync/internal"
	"github.com/starford/leadsync/internal/api"
	"github.com/starford/leadsync/internal/mcpserver"
	pkgconfig "github.com/starford/leadsync/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// stdout carries the MCP protocol, so logs go to stderr.
func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	comps, err := internal.NewComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	return mcpserver.New(comps.Service, api.Version).ServeStdio()
}

// readNote joins args, or reads stdin when there are none. Line endings
// left by a pipe or heredoc are dropped.
func readNote(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func summarize(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App.LogLevel, os.Stderr)

	note, err := readNote(cmd.Args().Slice(), os.Stdin)
	if err != nil {
		return err
	}

	comps, err := internal.NewComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	text, err := comps.Service.Summarize(ctx, note)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, text)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:   "leadsync",
		Usage:  "Lead listing and AI-summarized sales notes API",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the note tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:      "summarize",
				Usage:     "Print the summary of a note given as arguments or on stdin",
				ArgsUsage: "[note...]",
				Action:    summarize,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
