// Package model holds the immutable catalog types and the normalized
// stock status value the debounce engine reasons about.
package model

// Status is the coarse availability bucket for one size.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusOut       Status = "OUT"
	StatusUnknown   Status = "UNKNOWN"
)

// NormalizedStatus is a point-in-time stock read for one size.
//
// Equality is structural: two statuses are the same observation iff both
// the bucket and the low-stock marker match. The debouncer counts streaks
// of equal NormalizedStatus values, so AVAILABLE and AVAILABLE(low) are
// distinct observations.
type NormalizedStatus struct {
	Status   Status `json:"status"`
	LowStock bool   `json:"low_stock"`
}

func (s NormalizedStatus) Equal(o NormalizedStatus) bool {
	return s.Status == o.Status && s.LowStock == o.LowStock
}

// Check identifies one size to monitor within a product.
type Check struct {
	SizeLabel string `json:"size_label"`
	SizeID    int    `json:"size_id"`
}

// Product is one tracked catalog item. Immutable after config load.
type Product struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	ProductID int     `json:"product_id"`
	Checks    []Check `json:"checks"`
}
