package notify

import (
	"fmt"
	"time"

	"asset-booking/logger"
)

// Notifier is the delivery sink for booking notifications. The booking
// engine only decides what and when to notify; delivery is somebody
// else's problem and always best-effort.
type Notifier interface {
	Send(to, subject, textBody, htmlBody string) error
}

// ConsoleNotifier logs notifications instead of delivering them.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) Send(to, subject, textBody, htmlBody string) error {
	logger.Printf("notify to=%s subject=%q body=%q", to, subject, textBody)
	return nil
}

// HumanTimeRange renders a booking window for notification copy.
func HumanTimeRange(from, to time.Time) string {
	return fmt.Sprintf("%s to %s", from.UTC().Format("2006-01-02 15:04"), to.UTC().Format("2006-01-02 15:04"))
}
