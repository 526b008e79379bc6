package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(c); err != nil {
		stop()
		os.Exit(1)
	}
}
