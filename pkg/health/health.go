package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const defaultTimeout = 5 * time.Second

var checkUp = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "health_check_up",
		Help: "Result of the last readiness probe per dependency (1 up, 0 down)",
	},
	[]string{"check", "critical"},
)

// Response is the JSON body returned by both probes.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency check.
type CheckResult struct {
	Status     Status `json:"status"`
	Critical   bool   `json:"critical"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type registration struct {
	name     string
	checker  Checker
	critical bool
}

// Handler serves liveness and readiness probes.
//
// A failing critical check makes readiness return 503. A failing
// non-critical check reports "degraded" with 200.
type Handler struct {
	mu      sync.RWMutex
	checks  map[string]registration
	timeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout bounds the whole readiness probe.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandler creates a health handler with no checks registered.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		checks:  make(map[string]registration),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterCritical adds a checker whose failure marks the service down.
// Registering an existing name replaces it.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(registration{name: name, checker: checker, critical: true})
}

// RegisterNonCritical adds a checker whose failure marks the service degraded.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(registration{name: name, checker: checker})
}

func (h *Handler) register(reg registration) {
	h.mu.Lock()
	h.checks[reg.name] = reg
	h.mu.Unlock()
}

func (h *Handler) snapshot() []registration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	regs := make([]registration, 0, len(h.checks))
	for _, reg := range h.checks {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].name < regs[j].name })
	return regs
}

// LivenessHandler reports 200 while the process is serving.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// Check runs every registered checker concurrently and aggregates the result.
func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	regs := h.snapshot()
	results := make([]CheckResult, len(regs))

	var g errgroup.Group
	for i, reg := range regs {
		g.Go(func() error {
			results[i] = run(ctx, reg)
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{Status: StatusUp, Timestamp: time.Now().UTC()}
	if len(regs) > 0 {
		resp.Checks = make(map[string]CheckResult, len(regs))
	}
	for i, reg := range regs {
		res := results[i]
		resp.Checks[reg.name] = res
		if res.Status == StatusUp {
			continue
		}
		switch {
		case res.Critical:
			resp.Status = StatusDown
		case resp.Status == StatusUp:
			resp.Status = StatusDegraded
		}
	}
	return resp
}

func run(ctx context.Context, reg registration) CheckResult {
	start := time.Now()
	err := reg.checker(ctx)
	res := CheckResult{
		Status:     StatusUp,
		Critical:   reg.critical,
		DurationMS: time.Since(start).Milliseconds(),
	}

	critical := "false"
	if reg.critical {
		critical = "true"
	}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
		checkUp.WithLabelValues(reg.name, critical).Set(0)
		return res
	}
	checkUp.WithLabelValues(reg.name, critical).Set(1)
	return res
}

// ReadinessHandler serves Check as JSON: 503 when a critical check failed,
// 200 otherwise.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, resp)
	}
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
