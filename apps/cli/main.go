package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/edumaster/core"
	logsvc "github.com/trezcool/edumaster/services/logger"
	"github.com/trezcool/edumaster/storage"
)

func main() {
	os.Exit(start())
}

func start() int {
	conf, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		return 1
	}

	// the output belongs to the commands: logs only show up in debug mode
	var logOut io.Writer = io.Discard
	if conf.Debug {
		logOut = os.Stderr
	}
	logger := logsvc.NewRollbarLogger(log.New(logOut, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening storage: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	cli, err := newCommandLine(ctx, conf, logger, store, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			cli.printError(err)
		}
		return 1
	}
	return 0
}
