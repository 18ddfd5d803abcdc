// Command healthcheck is a container HEALTHCHECK for scratch images. It
// only checks that the server port accepts TCP connections.
package main

import (
	"context"
	"os"
	"time"

	"github.com/projecthelena/clockping/internal/logging"
	"github.com/projecthelena/clockping/internal/probe"
)

const defaultAddr = "127.0.0.1:8080"

func target() string {
	if addr := os.Getenv("HEALTHCHECK_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

func run(ctx context.Context, addr string) int {
	if !probe.CheckAddress(ctx, addr, probe.DefaultTimeout) {
		logging.NewWithWriter(os.Stderr, "healthcheck").Printf("%s not accepting connections", addr)
		return 1
	}
	return 0
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	code := run(ctx, target())
	cancel()
	os.Exit(code)
}
