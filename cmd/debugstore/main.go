// debugstore is a CLI for running and querying debug store HTTP servers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffval"
)

func main() {
	var (
		ctx    = context.Background()
		stdout = os.Stdout
		stderr = os.Stderr
		args   = os.Args[1:]
	)
	err := exec(ctx, stdout, stderr, args)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	rootConfig := &rootConfig{
		stdout: stdout,
		stderr: stderr,
	}

	rootFlags := ff.NewFlagSet("debugstore")
	rootConfig.registerFlags(rootFlags)

	rootCommand := &ff.Command{
		Name:      "debugstore",
		ShortHelp: "run and query debug store HTTP servers",
		Flags:     rootFlags,
	}

	serveConfig := &serveConfig{rootConfig: rootConfig}
	serveFlags := ff.NewFlagSet("serve").SetParent(rootFlags)
	serveConfig.register(serveFlags)
	rootCommand.Subcommands = append(rootCommand.Subcommands, &ff.Command{
		Name:      "serve",
		ShortHelp: "serve a demo instrumented store over HTTP",
		Flags:     serveFlags,
		Exec:      serveConfig.Exec,
	})

	snapshotConfig := &snapshotConfig{rootConfig: rootConfig}
	snapshotFlags := ff.NewFlagSet("snapshot").SetParent(rootFlags)
	snapshotConfig.register(snapshotFlags)
	rootCommand.Subcommands = append(rootCommand.Subcommands, &ff.Command{
		Name:      "snapshot",
		ShortHelp: "fetch and print a remote store's snapshot",
		Flags:     snapshotFlags,
		Exec:      snapshotConfig.Exec,
	})

	streamConfig := &streamConfig{rootConfig: rootConfig}
	streamFlags := ff.NewFlagSet("stream").SetParent(rootFlags)
	streamConfig.register(streamFlags)
	rootCommand.Subcommands = append(rootCommand.Subcommands, &ff.Command{
		Name:      "stream",
		ShortHelp: "continuously stream a remote store's events to the terminal",
		Flags:     streamFlags,
		Exec:      streamConfig.Exec,
	})

	defer func() {
		if errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec) {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(rootCommand))
			err = nil
		}
	}()

	if err := rootCommand.Parse(args, ff.WithEnvVarPrefix("DEBUGSTORE")); err != nil {
		return err
	}

	switch rootConfig.logLevel {
	case "n", "none":
		rootConfig.info = log.New(io.Discard, "", 0)
		rootConfig.debug = log.New(io.Discard, "", 0)
	case "i", "info":
		rootConfig.info = log.New(stderr, "", 0)
		rootConfig.debug = log.New(io.Discard, "", 0)
	case "d", "debug":
		rootConfig.info = log.New(stderr, "", 0)
		rootConfig.debug = log.New(stderr, "[DEBUG] ", log.Lmsgprefix)
	default:
		return fmt.Errorf("invalid log level %q", rootConfig.logLevel)
	}

	return rootCommand.Run(ctx)
}

type rootConfig struct {
	stdout io.Writer
	stderr io.Writer

	uri      string
	logLevel string

	info, debug *log.Logger
}

func (cfg *rootConfig) registerFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'u',
		LongName:    "uri",
		Value:       ffval.NewValueDefault(&cfg.uri, "http://localhost:8520"),
		Usage:       "store server URI (http, https, or http+unix)",
		Placeholder: "URI",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'l',
		LongName:    "log",
		Value:       ffval.NewEnum(&cfg.logLevel, "info", "i", "debug", "d", "none", "n"),
		Usage:       "log level: i/info, d/debug, n/none",
		Placeholder: "LEVEL",
	})
}
