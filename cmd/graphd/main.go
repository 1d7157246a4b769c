package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/dhikaid/graphview/pkg/api"
	"github.com/dhikaid/graphview/pkg/server"
)

func main() {
	// Optional .env next to the binary; environment wins over defaults.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:    "graphd",
		Usage:   "Graph rendering HTTP service",
		Version: api.Version(),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "listening port",
				Sources: cli.EnvVars("PORT"),
				Value:   3000,
			},
			&cli.StringFlag{
				Name:    "storage-dir",
				Usage:   "directory for the graph document and rendered images",
				Sources: cli.EnvVars("STORAGE_DIR"),
				Value:   "storage",
			},
			&cli.StringFlag{
				Name:    "public-base-url",
				Usage:   "public base URL used to build absolute image URLs",
				Sources: cli.EnvVars("PUBLIC_BASE_URL"),
				Value:   "http://localhost:3000",
			},
			&cli.FloatFlag{
				Name:    "rate-limit",
				Usage:   "requests per second allowed per client IP",
				Sources: cli.EnvVars("RATE_LIMIT"),
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "options",
				Usage: "YAML file selecting optional behaviors (rate limit, CORS, caching, captions, reset)",
			},
			&cli.BoolFlag{
				Name:  "captions",
				Usage: "draw the title and subtitle captions on rendered images",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := server.NewConfig()
			cfg.Port = int(cmd.Int("port"))
			cfg.StorageDir = cmd.String("storage-dir")
			cfg.PublicBaseURL = cmd.String("public-base-url")
			cfg.RateLimit = rate.Limit(cmd.Float("rate-limit"))

			if path := cmd.String("options"); path != "" {
				if err := cfg.LoadOptions(path); err != nil {
					return err
				}
			}
			if cmd.Bool("captions") {
				cfg.Options.EnableCaptions = true
			}

			return api.Serve(ctx, cfg)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
