package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/legmirror/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	defer close(c)

	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("Received termination signal. Shutting down...")
		cancel()
	}()

	if err := app.New(*cfgFileName).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "legmirror: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("done")
}
