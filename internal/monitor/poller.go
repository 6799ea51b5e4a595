package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/five82/tiffin/internal/swiggy"
)

const (
	defaultInterval       = 30 * time.Second
	defaultRequestTimeout = 15 * time.Second
)

// DefaultTerminalStatuses end monitoring when observed, compared without
// regard to case.
var DefaultTerminalStatuses = []string{"delivered", "cancelled", "failed"}

// StopReason says why Run returned.
type StopReason int

const (
	StopTerminal StopReason = iota + 1
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopTerminal:
		return "terminal"
	case StopCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Update is one observed status change.
type Update struct {
	At              time.Time
	OrderID         string
	Status          string
	Previous        string
	ETA             string
	DeliveryPartner string
	RestaurantName  string
	Terminal        bool
}

// Notifier receives poll events. Calls happen on the goroutine running Run.
type Notifier interface {
	StatusChanged(u Update)
	TickFailed(err error)
}

// Result summarises a finished poll session.
type Result struct {
	Reason     StopReason
	LastStatus string
	Ticks      int
	Failures   int
}

// Options configure a Poller. Zero values pick defaults.
type Options struct {
	Interval         time.Duration
	RequestTimeout   time.Duration
	TerminalStatuses []string
	Logger           *log.Logger
}

// Poller repeatedly fetches an order's status until it reaches a terminal
// state or the caller cancels.
type Poller struct {
	tracker        swiggy.OrderTracker
	interval       time.Duration
	requestTimeout time.Duration
	terminal       map[string]struct{}
	logger         *log.Logger
}

// New builds a Poller around tracker.
func New(tracker swiggy.OrderTracker, opts Options) (*Poller, error) {
	if tracker == nil {
		return nil, fmt.Errorf("order tracker is nil")
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", opts.Interval)
	}
	interval := opts.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	statuses := opts.TerminalStatuses
	if len(statuses) == 0 {
		statuses = DefaultTerminalStatuses
	}
	terminal := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			terminal[s] = struct{}{}
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = &log.Logger{Level: log.ErrorLevel, Writer: log.IOWriter{Writer: io.Discard}}
	}
	return &Poller{
		tracker:        tracker,
		interval:       interval,
		requestTimeout: timeout,
		terminal:       terminal,
		logger:         logger,
	}, nil
}

// Interval returns the wait between ticks.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// IsTerminal reports whether status ends monitoring.
func (p *Poller) IsTerminal(status string) bool {
	_, ok := p.terminal[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Run polls orderID until a terminal status is seen or ctx is cancelled.
// Cancellation is the normal way to stop and yields a nil error. A request
// already in flight when ctx is cancelled runs to completion (bounded by the
// request timeout); no new request starts afterwards.
func (p *Poller) Run(ctx context.Context, orderID string, notify Notifier) (Result, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Result{}, fmt.Errorf("order id is empty")
	}
	if notify == nil {
		notify = nopNotifier{}
	}

	var (
		result   Result
		observed bool
	)
	for {
		if ctx.Err() != nil {
			result.Reason = StopCancelled
			return result, nil
		}

		result.Ticks++
		status, err := p.fetch(ctx, orderID)
		if err != nil {
			result.Failures++
			p.logger.Warn().Err(err).Str("order_id", orderID).Int("tick", result.Ticks).Msg("status poll failed")
			notify.TickFailed(err)
		} else if !observed || status.Status != result.LastStatus {
			update := Update{
				At:              time.Now(),
				OrderID:         orderID,
				Status:          status.Status,
				Previous:        result.LastStatus,
				ETA:             status.ETA,
				DeliveryPartner: status.DeliveryPartner,
				RestaurantName:  status.RestaurantName,
				Terminal:        p.IsTerminal(status.Status),
			}
			observed = true
			result.LastStatus = status.Status
			p.logger.Info().Str("order_id", orderID).Str("status", status.Status).Msg("order status changed")
			notify.StatusChanged(update)
			if update.Terminal {
				result.Reason = StopTerminal
				return result, nil
			}
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.Reason = StopCancelled
			return result, nil
		case <-timer.C:
		}
	}
}

func (p *Poller) fetch(ctx context.Context, orderID string) (swiggy.OrderStatus, error) {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.requestTimeout)
	defer cancel()
	return p.tracker.OrderStatus(reqCtx, orderID)
}

type nopNotifier struct{}

func (nopNotifier) StatusChanged(Update) {}
func (nopNotifier) TickFailed(error)     {}
