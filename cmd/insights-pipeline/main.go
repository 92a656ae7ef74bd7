package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(deps{newCompleter: provider.New, getenv: os.Getenv, loadEnv: godotenv.Load})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if isConfigError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
