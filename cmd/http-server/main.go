package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pior/httpmsg"
)

var gates = map[string]httpmsg.GateFactory{
	"channel":   httpmsg.NewChannelGate,
	"puddle":    httpmsg.NewPuddleGate,
	"semaphore": httpmsg.NewSemaphoreGate,
}

func main() {
	var (
		root    = flag.String("root", ".", "Directory to serve files from")
		workers = flag.Int("workers", httpmsg.DefaultWorkers, "Maximum number of connections handled at once")
		gate    = flag.String("gate", "channel", "Admission gate: channel, puddle or semaphore")
		verbose = flag.Bool("v", false, "Log every served file")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: http-server [-root dir] [-workers n] [-gate kind] port_number")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	gateFactory, ok := gates[*gate]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown gate: %s\n", *gate)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	server, err := httpmsg.NewServer(httpmsg.ServerConfig{
		Workers: *workers,
		Gate:    gateFactory,
		Handler: &httpmsg.FileHandler{FS: os.DirFS(*root), Logger: logger},
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}

	// Termination abandons in-flight connections.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("Server stopped!")
		os.Exit(1)
	}()

	fmt.Println("server: waiting for connection...")
	err = server.ListenAndServe(context.Background(), ":"+flag.Arg(0))
	fmt.Fprintf(os.Stderr, "server: %v\n", err)
	os.Exit(1)
}
