// Command filterctl validates, normalizes and encodes filter documents
// against a field schema, and serves the same operations over HTTP.
//
// Usage:
//
//	filterctl --schema users.yaml validate filter.json
//	filterctl --schema users.yaml normalize < filter.json
//	filterctl query filter.json
//	filterctl query --decode 'cond%5B0%5D.field=age&cond%5B0%5D.op=gt&cond%5B0%5D.value=18'
//	filterctl --schema-dir schemas --name users serve --addr :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInvalid):
		return exitInvalid
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}
}
