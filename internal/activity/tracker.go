// Package activity records when each identity was last seen and enforces a
// rolling inactivity window on top of token expiry.
package activity

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultWindow is the inactivity window when none is configured.
const DefaultWindow = 5 * time.Minute

// retention is how long an idle record is kept: at least the window, and
// until every token issued at its last touch has expired.
func retention(window, tokenLifetime time.Duration) time.Duration {
	return max(window, tokenLifetime)
}

// Outcome is the result of recording activity for an identity.
type Outcome int

const (
	// Fresh means no prior activity was recorded.
	Fresh Outcome = iota
	// Renewed means the identity was seen within the window.
	Renewed
	// Expired means the last activity is older than the window. The record
	// has been removed, so the next touch is Fresh again.
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Fresh:
		return "fresh"
	case Renewed:
		return "renewed"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Tracker records identity activity.
type Tracker interface {
	// Touch records activity for userID at the current time and reports how
	// it relates to the previous activity.
	Touch(ctx context.Context, userID string) (Outcome, error)
	// Forget drops any record for userID.
	Forget(ctx context.Context, userID string) error
}

var touchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activity_touch_total",
		Help: "Activity tracker touches by outcome",
	},
	[]string{"outcome"},
)

func observe(o Outcome) {
	touchTotal.WithLabelValues(o.String()).Inc()
}

// classify decides the outcome for a touch at now given the last activity.
func classify(last time.Time, seen bool, now time.Time, window time.Duration) Outcome {
	switch {
	case !seen:
		return Fresh
	case now.Sub(last) > window:
		return Expired
	default:
		return Renewed
	}
}
