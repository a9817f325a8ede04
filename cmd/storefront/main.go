package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/notify"
	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()

	args := commandArgs(os.Args[1:])
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, app.Usage)
		return 2
	}

	storefront := app.New(sigCtx, cfg, app.WithNotifier(notify.Multi{
		notify.Log{},
		notify.NewWriter(os.Stderr),
	}))
	storefront.Run()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		storefront.Close(ctx)
	}()

	err := storefront.Exec(sigCtx, os.Stdout, args)
	if err == nil {
		return 0
	}

	var opErr *service.OpError
	if !errors.As(err, &opErr) {
		fmt.Fprintln(os.Stderr, err)
	}
	if errors.Is(err, app.ErrUsage) || errors.Is(err, app.ErrUnknownCommand) {
		fmt.Fprint(os.Stderr, app.Usage)
		return 2
	}
	return 1
}

// commandArgs drops a leading --config flag so the command name comes
// first.
func commandArgs(args []string) []string {
	for len(args) != 0 {
		switch {
		case args[0] == "--config" && len(args) > 1:
			args = args[2:]
		case strings.HasPrefix(args[0], "--config="):
			args = args[1:]
		default:
			return args
		}
	}
	return args
}
