package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/livebattle/internal/feedsim"
	"github.com/okian/livebattle/pkg/logger"
)

func main() {
	var (
		addr         = flag.String("addr", feedsim.DefaultAddr, "Listen address")
		script       = flag.String("script", "", "JSON-lines script to replay (default: generate a battle)")
		gifts        = flag.Int("gifts", feedsim.DefaultGenerate, "Gifts in a generated battle")
		one          = flag.String("one", "Performer One", "First performer name for a generated battle")
		two          = flag.String("two", "Performer Two", "Second performer name for a generated battle")
		interval     = flag.Duration("interval", feedsim.DefaultInterval, "Delay between frames")
		loop         = flag.Bool("loop", false, "Replay until the client disconnects")
		reject       = flag.Int("reject", 0, "Reject the first N handshakes")
		rejectStatus = flag.Int("reject-status", http.StatusTooManyRequests, "Status for rejected handshakes")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedsim.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &feedsim.Config{
		Addr:       *addr,
		Script:     *script,
		Generate:   *gifts,
		SlotOne:    *one,
		SlotTwo:    *two,
		Interval:   *interval,
		Loop:       *loop,
		RejectN:    *reject,
		RejectWith: *rejectStatus,
	}

	if err := feedsim.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "feed simulator failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
