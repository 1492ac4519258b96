// Package cli holds the output adapters used by the command tree. Each
// adapter calls one primary service and renders the result to an io.Writer.
package cli

import (
	"time"

	"github.com/fatih/color"
)

const timeLayout = "2006-01-02 15:04"

var (
	pendingColor  = color.New(color.FgYellow)
	disposedColor = color.New(color.FgGreen)
	alertColor    = color.New(color.FgRed, color.Bold)
)

// statusLabel colours ledger statuses: open work yellow, terminal green.
func statusLabel(status string) string {
	switch status {
	case "PENDING", "IN_CUSTODY":
		return pendingColor.Sprint(status)
	case "DISPOSED":
		return disposedColor.Sprint(status)
	}
	return status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
