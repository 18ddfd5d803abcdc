// Command mockdb stands in for the database during local runs: it accepts
// TCP connections and closes them, which is all /readiness looks for.
package main

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/projecthelena/clockping/internal/logging"
)

func serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		_ = conn.Close()
	}
}

func main() {
	listen := pflag.StringP("listen", "l", "127.0.0.1:3306", "listen address")
	pflag.Parse()

	logger := logging.New("mockdb")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		logger.Fatalf("listen: %v", err)
	}

	logger.Printf("Mock database listening on %s", ln.Addr())
	if err := serve(ctx, ln); err != nil {
		logger.Fatalf("accept: %v", err)
	}
	logger.Println("Mock database exiting")
}
