package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/praoslabs/walletd/build"
	"github.com/praoslabs/walletd/pooldb"
	"github.com/praoslabs/walletd/sqldb"
	"github.com/praoslabs/walletd/txbuilder"
	"github.com/urfave/cli"
)

// defaultLogLevel is the log level applied to all subsystems unless the
// debuglevel flag says otherwise.
const defaultLogLevel = "info"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[poolctl] %v\n", err)
	os.Exit(1)
}

// setupLoggers routes every subsystem logger through a shared manager
// writing to stderr, then applies the debuglevel specification to it.
func setupLoggers(debugLevel string) error {
	mgr := build.NewSubLoggerManager(
		btclog.NewDefaultHandler(os.Stderr),
	)

	for _, sub := range []struct {
		subsystem string
		useLogger func(btclog.Logger)
	}{
		{pooldb.Subsystem, pooldb.UseLogger},
		{sqldb.Subsystem, sqldb.UseLogger},
		{txbuilder.Subsystem, txbuilder.UseLogger},
	} {
		sub.useLogger(mgr.GenSubLogger(sub.subsystem))
	}

	return build.ParseAndSetDebugLevels(debugLevel, mgr)
}

// openDB opens the stake pool database named by the global flags. The
// returned cleanup function must be called before the process exits.
func openDB(ctx *cli.Context) (pooldb.DB, func()) {
	cfg := pooldb.DefaultConfig()
	cfg.Dir = ctx.GlobalString("dir")
	cfg.Backend = ctx.GlobalString("backend")
	cfg.EpochLength = uint32(ctx.GlobalUint64("epochlength"))
	cfg.Postgres.Dsn = ctx.GlobalString("postgres.dsn")

	db, err := pooldb.Open(cfg)
	if err != nil {
		fatal(fmt.Errorf("unable to open pool db: %w", err))
	}

	cleanUp := func() {
		if err := db.Close(); err != nil {
			fatal(err)
		}
	}

	return db, cleanUp
}

func main() {
	app := cli.NewApp()
	app.Name = "poolctl"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "inspect and maintain a stake pool database"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "dir",
			Value:     ".",
			Usage:     "The directory the database file lives in.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name:  "backend",
			Value: pooldb.BackendSqlite,
			Usage: "The database backend, sqlite or postgres.",
		},
		cli.Uint64Flag{
			Name:  "epochlength",
			Value: pooldb.DefaultEpochLength,
			Usage: "The number of slots per epoch of the " +
				"indexed chain.",
		},
		cli.StringFlag{
			Name: "postgres.dsn",
			Usage: "The postgres connection string, for the " +
				"postgres backend.",
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Value: defaultLogLevel,
			Usage: "Logging level for all subsystems {trace, " +
				"debug, info, warn, error, critical} -- " +
				"You may also specify " +
				"<subsystem>=<level>,<subsystem2>=<level>," +
				"... to set the log level for individual " +
				"subsystems.",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		return setupLoggers(ctx.GlobalString("debuglevel"))
	}
	app.Commands = []cli.Command{
		listPoolsCommand,
		poolInfoCommand,
		productionCommand,
		stakeCommand,
		metadataCommand,
		unfetchedCommand,
		seedCommand,
		rollbackCommand,
		wipeCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
