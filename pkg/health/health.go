package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/nimson07/postFlow/pkg/httputil"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// DefaultTimeout bounds a readiness probe.
const DefaultTimeout = 5 * time.Second

// Response is written by both probes.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Latency  string `json:"latency"`
	Error    string `json:"error,omitempty"`
}

type dependency struct {
	name     string
	check    Checker
	critical bool
}

// Handler serves liveness and readiness. A failing critical dependency makes
// readiness answer 503; a failing non-critical one reports degraded with 200.
type Handler struct {
	mu      sync.RWMutex
	deps    map[string]dependency
	timeout time.Duration
}

func NewHandler() *Handler {
	return &Handler{deps: make(map[string]dependency), timeout: DefaultTimeout}
}

// Register is RegisterCritical.
func (h *Handler) Register(name string, checker Checker) {
	h.RegisterCritical(name, checker)
}

func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.add(dependency{name: name, check: checker, critical: true})
}

func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.add(dependency{name: name, check: checker})
}

func (h *Handler) add(d dependency) {
	h.mu.Lock()
	h.deps[d.name] = d
	h.mu.Unlock()
}

func (h *Handler) snapshot() []dependency {
	h.mu.RLock()
	defer h.mu.RUnlock()
	deps := make([]dependency, 0, len(h.deps))
	for _, d := range h.deps {
		deps = append(deps, d)
	}
	return deps
}

// Check runs every registered probe in parallel and folds the results into
// an overall status.
func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	deps := h.snapshot()
	results := make([]CheckResult, len(deps))

	var wg sync.WaitGroup
	for i, d := range deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := d.check(ctx)
			results[i] = CheckResult{
				Status:   StatusUp,
				Critical: d.critical,
				Latency:  time.Since(start).String(),
			}
			if err != nil {
				results[i].Status = StatusDown
				results[i].Error = err.Error()
			}
		}()
	}
	wg.Wait()

	resp := Response{Status: StatusUp, Timestamp: time.Now().UTC(), Checks: make(map[string]CheckResult, len(deps))}
	for i, d := range deps {
		res := results[i]
		resp.Checks[d.name] = res
		switch {
		case res.Status != StatusDown:
		case res.Critical:
			resp.Status = StatusDown
		case resp.Status == StatusUp:
			resp.Status = StatusDegraded
		}
	}
	return resp
}

// LivenessHandler answers 200 while the process is serving.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		code := http.StatusOK
		if resp.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, resp)
	}
}
