package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/fluks/pdfsearch/internal"
	"github.com/fluks/pdfsearch/internal/apperr"
	"github.com/fluks/pdfsearch/internal/parser"
	pkgconfig "github.com/fluks/pdfsearch/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

// loadConfig reads the configuration file and applies the root flags.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg, err := internal.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.IsSet("database") {
		cfg.SQLite.Path = cmd.String("database")
	}
	if cmd.IsSet("log-level") {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return nil, fmt.Errorf("log level: %w: %w", apperr.ErrInvalidArgument, err)
		}
	}
	if cmd.IsSet("log-format") {
		cfg.App.LogFormat = cmd.String("log-format")
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command, cfg *internal.Config, opts ...internal.Option) error {
	opts = append([]internal.Option{
		internal.WithConfig(cfg),
		internal.WithJSON(cmd.Bool("json")),
		internal.WithOutput(cmd.Root().Writer, cmd.Root().ErrWriter),
	}, opts...)

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func indexAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("recursion") {
		cfg.Index.Recursion = int(cmd.Int("recursion"))
	}
	if cmd.IsSet("extensions") {
		cfg.Index.Extensions = cmd.StringSlice("extensions")
	}

	dirs := cmd.Args().Slice()
	if list := cmd.String("directories"); list != "" {
		dirs = append(dirs, parser.SplitDirectories(list)...)
	}
	return run(ctx, cmd, cfg,
		internal.WithAction(internal.ActionIndex),
		internal.WithDirectories(dirs...))
}

func queryAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("matches") {
		cfg.Search.Matches = int(cmd.Int("matches"))
	}
	if cmd.IsSet("verbose") {
		cfg.Search.Verbose = cmd.Bool("verbose")
	}
	text := strings.Join(cmd.Args().Slice(), " ")
	return run(ctx, cmd, cfg,
		internal.WithAction(internal.ActionQuery),
		internal.WithQuery(text))
}

func simpleAction(action internal.Action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(ctx, cmd, cfg, internal.WithAction(action))
	}
}

func configInitAction(_ context.Context, cmd *cli.Command) error {
	path := defaultConfigPath
	if cmd.NArg() > 0 {
		path = cmd.Args().First()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s: %w", path, apperr.ErrAlreadyExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if err := pkgconfig.Save(path, internal.NewDefaultConfig()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.Root().Writer, path)
	return err
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "pdfsearch",
		Usage: "Index the text of PDF files and search it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to config file (.yaml/.yml, or key = value format)",
				TakesFile: true,
				Sources:   cli.EnvVars("PDFSEARCH_CONFIG"),
			},
			&cli.StringFlag{
				Name:      "database",
				Aliases:   []string{"d"},
				Usage:     "Path to the SQLite database file",
				TakesFile: true,
				Sources:   cli.EnvVars("PDFSEARCH_DATABASE"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (auto, json, text)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON lines",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index documents under the given directories; without any, update the index",
				ArgsUsage: "[DIR...]",
				Action:    indexAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "recursion",
						Aliases: []string{"r"},
						Usage:   "Directory levels to descend below each root; negative means no limit",
					},
					&cli.StringFlag{
						Name:    "directories",
						Aliases: []string{"f"},
						Usage:   `Comma-separated directories; "\," keeps a comma in a name`,
					},
					&cli.StringSliceFlag{
						Name:    "extensions",
						Aliases: []string{"e"},
						Usage:   "File suffixes to index",
					},
				},
			},
			{
				Name:   "update",
				Usage:  "Drop documents whose files are gone and re-read changed ones",
				Action: simpleAction(internal.ActionUpdate),
			},
			{
				Name:      "query",
				Usage:     "Print the documents whose text contains TEXT",
				ArgsUsage: "TEXT",
				Action:    queryAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "matches",
						Aliases: []string{"m"},
						Usage:   "Maximum number of results; 0 means no limit",
						Validator: func(n int64) error {
							if n < 0 {
								return fmt.Errorf("matches must not be negative: %w", apperr.ErrInvalidArgument)
							}
							return nil
						},
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print page numbers and a snippet around each match",
					},
				},
			},
			{
				Name:   "vacuum",
				Usage:  "Reclaim unused space in the database",
				Action: simpleAction(internal.ActionVacuum),
			},
			{
				Name:   "stats",
				Usage:  "Print document and page counts",
				Action: simpleAction(internal.ActionStats),
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Commands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "Write the default YAML configuration",
						ArgsUsage: "[PATH]",
						Action:    configInitAction,
					},
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		if internal.IsUsageError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
