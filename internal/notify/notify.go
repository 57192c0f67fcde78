// Package notify delivers short text messages: WhatsApp deep links for the
// storefront and the notification edge function for server-side sends.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ErrNoDestination is returned when a message has no recipient.
var ErrNoDestination = errors.New("notification destination is required")

// Dispatcher sends message to the destination number.
type Dispatcher interface {
	Send(ctx context.Context, to, message string) error
}

// DefaultWhatsAppBase is the click-to-chat host.
const DefaultWhatsAppBase = "https://wa.me"

// WhatsAppLink builds a click-to-chat deep link. Non-digits are stripped
// from the number, so "+27 82 123 4567" becomes "27821234567".
func WhatsAppLink(base, number, message string) (string, error) {
	digits := normalizeMSISDN(number)
	if digits == "" {
		return "", ErrNoDestination
	}
	if base == "" {
		base = DefaultWhatsAppBase
	}
	link := strings.TrimSuffix(base, "/") + "/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link, nil
}

func normalizeMSISDN(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LinkDispatcher "sends" by opening a WhatsApp deep link.
type LinkDispatcher struct {
	BaseURL string
	// Open receives the link. Defaults to logging it.
	Open func(ctx context.Context, link string) error
}

func (d *LinkDispatcher) Send(ctx context.Context, to, message string) error {
	link, err := WhatsAppLink(d.BaseURL, to, message)
	if err != nil {
		return err
	}
	if d.Open == nil {
		slog.Info("WhatsApp link", "link", link)
		return nil
	}
	if err := d.Open(ctx, link); err != nil {
		return fmt.Errorf("failed to open whatsapp link: %w", err)
	}
	return nil
}

// Multi sends through every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) Send(ctx context.Context, to, message string) error {
	var errs []error
	for _, d := range m {
		if err := d.Send(ctx, to, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
