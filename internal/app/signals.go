package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// NotifySignals sets token on SIGINT or SIGTERM. The handler does nothing
// else; teardown happens on the loop goroutine. release stops delivery.
func NotifySignals(token *StopToken, log zerolog.Logger) (release func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			select {
			case sig := <-ch:
				log.Info().Str("signal", sig.String()).Msg("stop requested")
				token.Stop()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
