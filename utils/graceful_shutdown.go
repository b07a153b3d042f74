package utils

import (
	"context"
	"fmt"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
)

// GracefulShutdown waits for the context to be cancelled, runs the cleanup
// callback, then cancels again so any remaining waiters unblock.
func GracefulShutdown(ctx context.Context, cancel context.CancelFunc, onShutdown func()) {
	<-ctx.Done()

	fmt.Println(lipgloss.Yellow.Render("\n🔄 Shutting down..."))

	if onShutdown != nil {
		onShutdown()
	}

	cancel()
}
