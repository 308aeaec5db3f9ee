// Package expiry classifies products by how close they are to their expiry date.
package expiry

import (
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
)

type Status string

const (
	StatusExpired  Status = "Expired"
	StatusCritical Status = "Critical"
	StatusWarning  Status = "Warning"
	StatusSafe     Status = "Safe"
)

const (
	CriticalDays = 7
	WarningDays  = 30
)

// Severity orders statuses from Safe (0) to Expired (3).
func (s Status) Severity() int {
	switch s {
	case StatusExpired:
		return 3
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Entry is one line of the expiry report.
type Entry struct {
	Name       string     `json:"name"`
	Batch      string     `json:"batch"`
	ExpiryDate model.Date `json:"expiry_date"`
	DaysLeft   int        `json:"days_left"`
	Status     Status     `json:"status"`
}

func DaysLeft(expiryDate, today model.Date) int {
	return expiryDate.DaysSince(today)
}

// Classify maps an expiry date to a status. Boundaries are inclusive:
// 0 days left is Expired, 7 Critical, 30 Warning.
func Classify(expiryDate, today model.Date) Status {
	return classifyDays(DaysLeft(expiryDate, today))
}

// ClassifyString classifies a raw YYYY-MM-DD value.
func ClassifyString(raw string, today model.Date) (Status, int, error) {
	d, err := model.ParseDate(raw)
	if err != nil {
		return "", 0, model.ErrMalformedDate.Wrap(err)
	}
	days := DaysLeft(d, today)
	return classifyDays(days), days, nil
}

func classifyDays(days int) Status {
	switch {
	case days <= 0:
		return StatusExpired
	case days <= CriticalDays:
		return StatusCritical
	case days <= WarningDays:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// Report classifies every product, preserving input order.
func Report(products []model.Product, today model.Date) []Entry {
	out := make([]Entry, 0, len(products))
	for _, p := range products {
		days := DaysLeft(p.ExpiryDate, today)
		out = append(out, Entry{
			Name:       p.Name,
			Batch:      p.Batch,
			ExpiryDate: p.ExpiryDate,
			DaysLeft:   days,
			Status:     classifyDays(days),
		})
	}
	return out
}
