package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	goerrors "github.com/goliatone/go-errors"

	"github.com/five82/tiffin/internal/swiggy"
)

const (
	maxRestaurants     = 10
	maxMenuItems       = 20
	maxDescriptionSize = 80
	ruleWidth          = 60
)

// Printer writes styled command output.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter returns a printer writing to w. The color profile is detected
// from w, so output to pipes and buffers carries no escape codes.
func NewPrinter(w io.Writer, theme Theme) *Printer {
	return &Printer{
		out:    w,
		styles: theme.stylesFor(lipgloss.NewRenderer(w)),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) line(parts ...string) {
	fmt.Fprintln(p.out, strings.Join(parts, ""))
}

func (p *Printer) rule() {
	p.line(p.styles.Rule.Render(strings.Repeat("=", ruleWidth)))
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.styles.SuccessText.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Info prints an informational line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.styles.InfoText.Render("ℹ " + fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.styles.WarningText.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// Error prints err as a human-readable reason. Expired sessions get a hint
// to log in again.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	p.line(p.styles.DangerText.Render("✗ " + ErrorMessage(err)))
	if swiggy.IsAuthExpired(err) {
		p.line(p.styles.MutedText.Render("  run `tiffin login` to refresh your session"))
	}
}

// ErrorMessage renders err without the envelope decoration.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Message == "" {
		return err.Error()
	}
	msg := rich.Message
	if rich.Category == goerrors.CategoryExternal || rich.Category == goerrors.CategoryBadInput {
		if src := errors.Unwrap(rich); src != nil {
			msg += ": " + src.Error()
		}
	}
	return msg
}

// Restaurants prints up to ten search results.
func (p *Printer) Restaurants(restaurants []swiggy.Restaurant) {
	if len(restaurants) == 0 {
		p.Warn("No restaurants found")
		return
	}
	p.Success("Found %d restaurant(s)", len(restaurants))
	p.line()
	p.rule()
	for i, r := range restaurants[:min(len(restaurants), maxRestaurants)] {
		open := p.styles.SuccessText.Render("Open")
		if !r.IsOpen {
			open = p.styles.DangerText.Render("Closed")
		}
		p.line(p.styles.Title.Render(fmt.Sprintf("%d. %s", i+1, orNA(r.Name))))
		p.line(fmt.Sprintf("   Rating: %s (%s) | Delivery: %s | ", r.Rating, r.TotalRatings, r.DeliveryTime), open)
		p.line("   Cuisine: ", orNA(strings.Join(r.Cuisines, ", ")))
		p.line(fmt.Sprintf("   Cost: %s | %s", orNA(r.CostForTwo), orNA(r.Location())))
		p.line(p.styles.FaintText.Render("   ID: " + orNA(r.ID)))
		p.line()
	}
}

// Menu prints up to twenty menu items.
func (p *Printer) Menu(items []swiggy.MenuItem) {
	if len(items) == 0 {
		p.Warn("No menu items found")
		return
	}
	p.Success("Found %d menu item(s)", len(items))
	p.line()
	p.rule()
	p.line(p.styles.Title.Render("MENU"))
	p.rule()
	for i, item := range items[:min(len(items), maxMenuItems)] {
		marker := p.styles.SuccessText.Render("[VEG]")
		if !item.IsVeg {
			marker = p.styles.DangerText.Render("[NON-VEG]")
		}
		p.line(fmt.Sprintf("%d. ", i+1), marker, " ", p.styles.Text.Render(orNA(item.Name)))
		p.line("   Price: ", item.Price.String())
		if desc := strings.TrimSpace(item.Description); desc != "" {
			p.line(p.styles.MutedText.Render("   " + truncate(desc, maxDescriptionSize)))
		}
		p.line(p.styles.FaintText.Render("   ID: " + orNA(item.ID)))
		p.line()
	}
}

// OrderStatus prints a status block for one order.
func (p *Printer) OrderStatus(status swiggy.OrderStatus) {
	p.line()
	p.rule()
	p.line(p.styles.Title.Render("Order: " + orNA(status.OrderID)))
	p.rule()
	p.line("Status: ", p.styles.StatusStyle(status.Status).Render(status.Status))
	if status.ETA != "" && status.ETA != "N/A" {
		p.line("ETA: ", status.ETA)
	}
	if status.RestaurantName != "" {
		p.line("Restaurant: ", status.RestaurantName)
	}
	if status.Total > 0 {
		p.line("Total: ", status.Total.String())
	}
	if status.DeliveryPartner != "" {
		p.line("Delivery Partner: ", status.DeliveryPartner)
	}
	for _, item := range status.Items {
		p.line(p.styles.MutedText.Render(fmt.Sprintf("  - %dx %s", item.Quantity, item.Name)))
	}
	if status.TrackingURL != "" {
		p.line(p.styles.FaintText.Render("Tracking: " + status.TrackingURL))
	}
	p.line()
}

// Orders prints the active orders list.
func (p *Printer) Orders(orders []swiggy.OrderSummary) {
	if len(orders) == 0 {
		p.Info("No active orders")
		return
	}
	p.Success("Found %d active order(s)", len(orders))
	p.line()
	for _, o := range orders {
		p.line(p.styles.Title.Render(orNA(o.OrderID)), "  ", p.styles.StatusStyle(o.Status).Render(titleCase(o.Status)))
		details := []string{orNA(o.RestaurantName)}
		if o.Total > 0 {
			details = append(details, o.Total.String())
		}
		if o.ETA != "" && o.ETA != "N/A" {
			details = append(details, "ETA "+o.ETA)
		}
		if o.OrderDate != "" && o.OrderDate != "N/A" {
			details = append(details, o.OrderDate)
		}
		p.line("   ", p.styles.MutedText.Render(strings.Join(details, " | ")))
	}
	p.line()
}

// Placed prints the confirmation for a new order.
func (p *Printer) Placed(order swiggy.PlacedOrder) {
	p.Success("Order placed: %s", order.OrderID)
	p.line(p.styles.MutedText.Render("  track it with `tiffin monitor " + order.OrderID + "`"))
}
