package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yt2ig/yt2ig/async"
	"github.com/yt2ig/yt2ig/internal/config"
	_ "github.com/yt2ig/yt2ig/providers"
)

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := logConfig.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cfg *config.Config
	app := &cli.App{
		Name:  "yt2ig",
		Usage: "turn shared YouTube links into story cards",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Value: cli.NewStringSlice(".env"),
				Usage: "load settings from `FILE` (missing files are ignored)",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "log at debug level, including state changes",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err = config.Load(c.StringSlice("env-file")...)
			if err != nil {
				return err
			}
			if c.Bool("debug") {
				cfg.LogLevel = zapcore.DebugLevel
			}
			logConfig.Level.SetLevel(cfg.LogLevel)
			return cfg.Validate()
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "show what each shared text resolves to",
				ArgsUsage: "TEXT...",
				Action: func(c *cli.Context) error {
					return parse(c.App.Writer, c.Args().Slice())
				},
			},
			{
				Name:  "providers",
				Usage: "list the hosts links are recognised from",
				Action: func(c *cli.Context) error {
					return listProviders(c.App.Writer)
				},
			},
			{
				Name:      "create",
				Usage:     "create a card from shared text",
				ArgsUsage: "TEXT",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "save the card in `DIR` (default $EXPORT_DIR)",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "name the card with `TEMPLATE` (default $EXPORT_NAME_TEMPLATE)",
					},
					&cli.BoolFlag{
						Name:  "s3",
						Usage: "upload the card to $S3_BUCKET instead of saving it locally",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one TEXT argument", 2)
					}
					applyExportFlags(c, cfg)
					return create(ctx, c.App.Writer, cfg, c.Args().First(), c.Bool("s3"))
				},
			},
			{
				Name:  "sample",
				Usage: "create a card from the built-in example thumbnail, without network access",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "save the card in `DIR` (default $EXPORT_DIR)",
					},
				},
				Action: func(c *cli.Context) error {
					applyExportFlags(c, cfg)
					return sample(ctx, c.App.Writer, cfg)
				},
			},
			{
				Name:  "serve",
				Usage: "serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen on `ADDR` (default $SERVER_ADDR)",
					},
					&cli.BoolFlag{
						Name:  "s3",
						Usage: "export cards to $S3_BUCKET when asked, instead of $EXPORT_DIR",
					},
				},
				Action: func(c *cli.Context) error {
					if addr := c.String("addr"); addr != "" {
						cfg.Server.Addr = addr
					}
					return serve(ctx, cfg, c.Bool("s3"))
				},
			},
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		stop()
		err = <-result
		if err != nil {
			logger.Fatal(err.Error())
		}
	}
}

func applyExportFlags(c *cli.Context, cfg *config.Config) {
	if out := c.String("out"); out != "" {
		cfg.Export.Dir = out
	}
	if name := c.String("name"); name != "" {
		cfg.Export.NameTemplate = name
	}
}
