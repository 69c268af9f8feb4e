package fetch

import (
	"strings"

	"github.com/ThePeze/BershkaStockMonitor/internal/model"
)

// lowStockThreshold is the marker the shop sets on entries close to
// selling out. It qualifies the status; it never changes the bucket.
const lowStockThreshold = "BSK_UMBRAL_BAJO"

// Normalize maps a raw per-size entry to the status the debouncer consumes.
// Anything that is not a recognized availability string (including an empty
// or malformed one) is UNKNOWN, not an error.
func Normalize(entry SizeStock) model.NormalizedStatus {
	availability := strings.TrimSpace(strings.ToLower(entry.Availability))
	low := entry.TypeThreshold == lowStockThreshold

	switch availability {
	case "in_stock":
		return model.NormalizedStatus{Status: model.StatusAvailable, LowStock: low}
	case "out_of_stock":
		return model.NormalizedStatus{Status: model.StatusOut, LowStock: low}
	default:
		return model.NormalizedStatus{Status: model.StatusUnknown, LowStock: low}
	}
}
