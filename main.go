package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"socialfeed/app/config"
	"socialfeed/app/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var exit = os.Exit

func main() {
	exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	app := newApp(in, out, errOut)
	if err := app.Run(args); err != nil {
		if errors.Is(err, errCancelled) {
			return 1
		}
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	dbFlag := &cli.StringFlag{
		Name:    "db-path",
		Usage:   "Badger database directory",
		Value:   "data/badger",
		EnvVars: []string{"DB_PATH"},
	}
	yesFlag := &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "do not ask for confirmation",
	}

	maint := func(c *cli.Context) maintenance {
		return maintenance{
			dbPath: c.String("db-path"),
			in:     c.App.Reader,
			out:    c.App.Writer,
			log:    logger.NewWithWriter(c.App.ErrWriter, 4),
		}
	}

	return &cli.App{
		Name:        "socialfeed",
		Usage:       "social feed REST API",
		Version:     version,
		HideVersion: true,
		Reader:      in,
		Writer:      out,
		ErrWriter:   errOut,
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command: %s", c.Args().First())
			}
			return cli.ShowAppHelp(c)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Action: func(c *cli.Context) error {
					cfg, err := config.NewConfig()
					if err != nil {
						return err
					}
					log := logger.New(cfg.LogLevel)

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					return serve(ctx, cfg, log)
				},
			},
			{
				Name:  "init",
				Usage: "create a new empty database",
				Flags: []cli.Flag{dbFlag},
				Action: func(c *cli.Context) error {
					return maint(c).initDB()
				},
			},
			{
				Name:  "clean",
				Usage: "remove the database",
				Flags: []cli.Flag{dbFlag, yesFlag},
				Action: func(c *cli.Context) error {
					return maint(c).clean(c.Bool("yes"))
				},
			},
			{
				Name:  "backup",
				Usage: "write a backup of the database",
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:  "dir",
						Usage: "directory the backup file is written to",
						Value: "data/backups",
					},
				},
				Action: func(c *cli.Context) error {
					_, err := maint(c).backup(c.String("dir"))
					return err
				},
			},
			{
				Name:      "restore",
				Usage:     "replace the database with a backup",
				ArgsUsage: "<backup file>",
				Flags:     []cli.Flag{dbFlag, yesFlag},
				Action: func(c *cli.Context) error {
					if !c.Args().Present() {
						return errors.New("backup file path required for restore")
					}
					return maint(c).restore(c.Args().First(), c.Bool("yes"))
				},
			},
			{
				Name:  "version",
				Usage: "show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "socialfeed version %s\n", version)
					return nil
				},
			},
		},
	}
}
