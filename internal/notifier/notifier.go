package notifier

import (
	"context"
	"fmt"
	"io"
)

// Notifier delivers one text message.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
}

// consolePreview is how much of a message the console fallback prints.
const consolePreview = 500

// ConsoleNotifier prints messages locally when no webhook is configured.
type ConsoleNotifier struct {
	Out io.Writer
}

// NewConsoleNotifier creates a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{Out: out}
}

func (c *ConsoleNotifier) Name() string { return "console" }

// Send prints the first characters of text.
func (c *ConsoleNotifier) Send(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.Out, "⚠️ DISCORD_WEBHOOK_URL not set; printing instead:\n%s\n", firstRunes(text, consolePreview))
	return err
}
