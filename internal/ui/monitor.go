package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/tiffin/internal/monitor"
)

var _ monitor.Notifier = (*LineNotifier)(nil)

// LineNotifier prints monitor updates as timestamped lines.
type LineNotifier struct {
	p *Printer
}

// NewLineNotifier returns a notifier writing through p.
func NewLineNotifier(p *Printer) *LineNotifier {
	return &LineNotifier{p: p}
}

// Started prints the monitoring header.
func (n *LineNotifier) Started(orderID string, interval time.Duration) {
	n.p.Info("Monitoring order %s every %s (Ctrl+C to stop)", orderID, interval)
	n.p.line(n.p.styles.Rule.Render(strings.Repeat("-", ruleWidth)))
}

// StatusChanged implements monitor.Notifier.
func (n *LineNotifier) StatusChanged(u monitor.Update) {
	s := n.p.styles
	n.p.line(
		s.InfoText.Render(fmt.Sprintf("[%s] ", u.At.Format("15:04:05"))),
		"Status: ",
		s.StatusStyle(u.Status).Render(strings.ToUpper(u.Status)),
	)
	if u.ETA != "" && u.ETA != "N/A" {
		n.p.Info("ETA: %s", u.ETA)
	}
	if u.DeliveryPartner != "" {
		n.p.Info("Delivery Partner: %s", u.DeliveryPartner)
	}
	if u.Terminal {
		banner := strings.Repeat("=", ruleWidth)
		n.p.line()
		n.p.line(s.SuccessText.Render(banner))
		n.p.Success("Order %s", u.Status)
		n.p.line(s.SuccessText.Render(banner))
	}
}

// TickFailed implements monitor.Notifier.
func (n *LineNotifier) TickFailed(err error) {
	n.p.Warn("Status check failed: %s", ErrorMessage(err))
}

// Stopped prints how monitoring ended.
func (n *LineNotifier) Stopped(result monitor.Result) {
	if result.Reason == monitor.StopCancelled {
		n.p.line()
		n.p.Info("Monitoring stopped by user")
	}
}
