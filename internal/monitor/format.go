package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/ThePeze/BershkaStockMonitor/internal/model"
)

const messageTimeFormat = "2006-01-02 15:04:05"

// banner returns the emoji prefix and human label for a confirmed status.
func banner(curr model.NormalizedStatus) (string, string) {
	switch curr.Status {
	case model.StatusAvailable:
		if curr.LowStock {
			return "✅", "IN STOCK (LOW)"
		}
		return "✅", "IN STOCK"
	case model.StatusOut:
		return "❌", "OUT OF STOCK"
	default:
		return "⚠️", "STATUS UNKNOWN"
	}
}

// formatChangeMessage renders a confirmed change for delivery. The first
// line doubles as the notification preview, so it carries the whole story.
func formatChangeMessage(p model.Product, c model.Check, curr model.NormalizedStatus, at time.Time) string {
	emoji, label := banner(curr)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s — %s — size %s\n", emoji, label, p.Title, c.SizeLabel)
	fmt.Fprintf(&b, "Time: %s\n", at.Format(messageTimeFormat))
	fmt.Fprintf(&b, "Product ID: %d\n", p.ProductID)
	fmt.Fprintf(&b, "Size ID: %d\n", c.SizeID)
	b.WriteString(p.URL)
	return b.String()
}

// oneLine collapses a multi-line message for console logging.
func oneLine(msg string) string {
	return strings.ReplaceAll(msg, "\n", " | ")
}
