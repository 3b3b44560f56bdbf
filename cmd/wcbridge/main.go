// Command wcbridge inspects and exercises the engine/platform media bridge:
// it builds and parses codec strings, relays RTMP publishes to WebM or RTP,
// and serves an engine over websocket.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand(viper.New()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
