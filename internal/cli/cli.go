package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/vbraga/tubefetch/internal/config"
)

const version = "0.2.0"

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg  config.Logger
		configPath string
		logger     *slog.Logger
	)

	flags := append(loggerCfg.Flags(),
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("TUBEFETCH_CONFIG"),
			Destination: &configPath,
		},
	)

	app := &cli.Command{
		Name:    "tubefetch",
		Usage:   "Download videos and audio through yt-dlp",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger = loggerCfg.Configure(os.Stderr)
			slog.SetDefault(logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdGet(&configPath),
			cmdFormats(&configPath),
			cmdHistory(&configPath),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runInteractive(ctx, configPath)
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("command failed", slog.Any("error", err))
		return err
	}

	return nil
}
