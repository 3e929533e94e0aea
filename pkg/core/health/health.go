package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultTimeout bounds a single probe when the caller's context has no
// earlier deadline
const DefaultTimeout = 2 * time.Second

// Status represents the health status of a service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// rank orders statuses from best to worst
func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Probe returns nil when the dependency it exercises works
type Probe func(ctx context.Context) error

// CheckResult is the outcome of one probe
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message"`
	Latency   time.Duration `json:"latency_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

type check struct {
	name  string
	slow  time.Duration
	probe Probe
}

// run executes the probe. An error makes the check unhealthy, a response
// slower than c.slow makes it degraded.
func (c check) run(ctx context.Context, timeout time.Duration) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.probe(ctx)
	res := CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "ok",
		Latency:   time.Since(start),
		Timestamp: time.Now(),
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Status = StatusUnhealthy
		res.Message = fmt.Sprintf("no answer within %v", timeout)
	case err != nil:
		res.Status = StatusUnhealthy
		res.Message = err.Error()
	case c.slow > 0 && res.Latency > c.slow:
		res.Status = StatusDegraded
		res.Message = fmt.Sprintf("slow response: %v", res.Latency)
	}
	return res
}

// Registry holds the named probes of one service
type Registry struct {
	mu      sync.RWMutex
	checks  map[string]check
	service string
	version string
	timeout time.Duration
	startAt time.Time
}

// NewRegistry creates an empty registry for service at version
func NewRegistry(service, version string) *Registry {
	return &Registry{
		checks:  make(map[string]check),
		service: service,
		version: version,
		timeout: DefaultTimeout,
		startAt: time.Now(),
	}
}

// SetTimeout changes the per-probe timeout
func (r *Registry) SetTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.timeout = d
	}
}

// Register adds or replaces the probe called name. A zero slow never
// reports degraded.
func (r *Registry) Register(name string, slow time.Duration, probe Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check{name: name, slow: slow, probe: probe}
}

// Unregister removes the probe called name
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checks, name)
}

// Check runs every probe concurrently and folds the results into a report
// whose status is the worst individual status
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checks := make([]check, 0, len(r.checks))
	for _, c := range r.checks {
		checks = append(checks, c)
	}
	timeout := r.timeout
	r.mu.RUnlock()

	sort.Slice(checks, func(i, j int) bool { return checks[i].name < checks[j].name })

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c check) {
			defer wg.Done()
			results[i] = c.run(ctx, timeout)
		}(i, c)
	}
	wg.Wait()

	report := &Report{
		Service:   r.service,
		Version:   r.version,
		Status:    StatusHealthy,
		Uptime:    time.Since(r.startAt),
		Timestamp: time.Now(),
		Checks:    results,
	}
	for _, res := range results {
		if res.Status.rank() > report.Status.rank() {
			report.Status = res.Status
		}
	}
	return report
}

// CheckWithTimeout runs Check under a fresh context bounded by timeout
func (r *Registry) CheckWithTimeout(timeout time.Duration) *Report {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Check(ctx)
}

// Report is the aggregated health of a service
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime_ns"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Serving reports whether the service can answer requests, possibly slowly
func (r *Report) Serving() bool {
	return r.Status != StatusUnhealthy
}

// Failing returns the names of unhealthy checks
func (r *Report) Failing() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status == StatusUnhealthy {
			names = append(names, c.Name)
		}
	}
	return names
}

func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %s (%d checks, up %v)",
		r.Service, r.Version, r.Status, len(r.Checks), r.Uptime.Truncate(time.Second))
}
