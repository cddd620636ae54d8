package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// spinnerFor returns glyphs and a frame interval for the dispatch target
// just for fun, these vary with the provider
func spinnerFor(provider string) (glyphs []string, speed time.Duration) {
	switch strings.ToLower(provider) {
	case "anthropic":
		return []string{"✶", "✸", "✺", "✹", "✷"}, 500 * time.Millisecond
	case "mock":
		return []string{"◜", "◠", "◝", "◞", "◡", "◟"}, 333 * time.Millisecond
	default:
		return []string{"⠄", "⠆", "⠇", "⠋", "⠙", "⠸", "⠰", "⠠", "⠰", "⠸", "⠙", "⠋", "⠇", "⠆"}, 200 * time.Millisecond
	}
}

// StartSpinner draws a progress line on w until the returned stop is called
// or ctx is done; stop blocks until the line is cleared
func StartSpinner(ctx context.Context, w io.Writer, provider, label string) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		defer func() {
			// always clear this line when the goroutine exits
			fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
		}()

		glyphs, speed := spinnerFor(provider)
		cyan := color.New(color.FgCyan).SprintFunc()
		ticker := time.NewTicker(speed)
		defer ticker.Stop()

		for i := 0; ; i = (i + 1) % len(glyphs) {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", cyan(fmt.Sprintf("%s %s", glyphs[i], label)))
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
		<-finished
	}
}
