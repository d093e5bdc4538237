// Command armplot draws a two segment arm with its biceps and triceps
// to image files or an HTML page.
//
// Usage:
//
//	armplot render [--config arm.yaml] [--format png] [--output dir]
//	armplot sweep  [--parameter elbow --from 0 --to 120 --step 10]
//	armplot reach X Y
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
