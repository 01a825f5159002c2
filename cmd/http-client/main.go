package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/pior/httpmsg"
	"github.com/pior/httpmsg/wire"
)

const bodyFile = "body.html"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("http-client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	printRTT := fs.Bool("p", false, "prints the RTT")
	verbose := fs.Bool("v", false, "log protocol events to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: http-client [-p] server_url port_number")
		fmt.Fprintln(stderr, "\t-p prints the RTT")
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	uri, port := fs.Arg(0), fs.Arg(1)
	host, _ := httpmsg.SplitURI(uri)

	ctx := context.Background()

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		fmt.Fprintf(stderr, "client: failed to resolve %s: %v\n", host, err)
		return 1
	}

	client := httpmsg.NewClient(httpmsg.ClientConfig{Logger: logger})

	fmt.Fprintf(stdout, "client: connecting to %s\n", addrs[0])
	res, err := client.Get(ctx, uri, port)

	var setupErr *httpmsg.SetupError
	if errors.As(err, &setupErr) {
		fmt.Fprintf(stderr, "client: failed to connect: %v\n", setupErr.Err)
		return 1
	}
	if err != nil {
		if errors.Is(err, wire.ErrPrematureClose) {
			logger.Debug("response incomplete", "error", err)
		} else {
			logger.Warn("response failed", "error", err)
		}
		fmt.Fprintln(stdout, "client: received nothing from server or error occured")
		return 0
	}

	fmt.Fprintf(stdout, "client: connected to %s\n", res.RemoteAddr)
	if *printRTT {
		fmt.Fprintf(stdout, "Round-trip time = %.2f ms\n", float64(res.ConnectTime.Microseconds())/1000)
	}

	fmt.Fprintf(stdout, "\n%s\n%s\n", res.StatusLine, res.Header)
	fmt.Fprintln(stdout, "--------------")
	if len(res.Body) == 0 {
		fmt.Fprint(stdout, "Body is empty.\n\n")
		return 0
	}

	if err := os.WriteFile(bodyFile, res.Body, 0o644); err != nil {
		fmt.Fprintf(stderr, "client: saving body: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Body file saved to %s (%d bytes, xxh3 %016x)\n\n", bodyFile, len(res.Body), res.Checksum)
	return 0
}
