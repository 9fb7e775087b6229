package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

var sanitizer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	`\`, "/",
	`"`, "'",
)

// Sanitize neutralizes characters that break the quoting of native
// notification backends: line breaks become spaces, backslashes become
// slashes and double quotes become single quotes.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// Notifier shows each commentary as a desktop notification.
type Notifier struct {
	title  string
	notify func(title, message string, icon any) error
}

func NewNotifier(title string) *Notifier {
	return &Notifier{title: title, notify: beeep.Notify}
}

func (n *Notifier) Name() string { return "notification" }

// Deliver returns early if ctx ends first; the backend call is not interruptible.
func (n *Notifier) Deliver(ctx context.Context, c commentary.Commentary) error {
	title := Sanitize(fmt.Sprintf("%s (%s)", n.title, strings.ToUpper(c.Tone)))
	body := Sanitize(c.Text)

	done := make(chan error, 1)
	go func() { done <- n.notify(title, body, "") }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("show notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
