// Package state persists the monitor's debounce and error-backoff records
// so a restart resumes from the last confirmed picture of the shop.
//
// Every flush is a whole-document replace; a torn write must never corrupt
// the previously durable document.
package state
