package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderOraclePreview prints Python source with terminal syntax highlighting,
// checking for cancellation between lines so a long oracle can be skipped
// mid-print.
func RenderOraclePreview(ctx context.Context, content string, theme string) error {
	lines := strings.Split(content, "\n")

	for _, line := range lines {
		// Check for context cancellation before each line
		select {
		case <-ctx.Done():
			fmt.Printf("\n\n🔄 Preview interrupted...\n")
			return ctx.Err()
		default:
		}

		// Use a buffer to capture the highlight output
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", "python", "terminal256", theme); err != nil {
			return err
		}
		fmt.Print(buf.String())
	}

	return nil
}
