// Package monitor runs one watchlist pass: load, check, report, notify.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"domainwatch/internal/checker"
	"domainwatch/internal/config"
	"domainwatch/internal/metrics"
	"domainwatch/internal/notify"
	"domainwatch/internal/watchlist"
)

// Checker is the capability the monitor needs from the lookup side. Fakes
// stand in for it in tests.
type Checker interface {
	Check(ctx context.Context, domain string) checker.Result
}

// Notifier is the capability the monitor needs from the delivery side.
type Notifier interface {
	Notify(ctx context.Context, p notify.Payload) error
}

// Summary describes one completed run.
type Summary struct {
	RunID      string
	Started    time.Time
	Duration   time.Duration
	Results    []checker.Result
	Available  []checker.Result
	Registered int
	Errors     int
	Notified   bool
}

// Monitor orchestrates a single run per invocation; scheduling belongs to
// cron or CI.
type Monitor struct {
	cfg      config.Config
	checker  Checker
	notifier Notifier
	log      *slog.Logger
}

// New wires a monitor from explicit dependencies.
func New(cfg config.Config, chk Checker, n Notifier, log *slog.Logger) *Monitor {
	return &Monitor{cfg: cfg, checker: chk, notifier: n, log: log}
}

// Run executes one monitoring pass. The returned error is fatal for the
// process: a missing watchlist or a failed notification. Per-domain lookup
// failures stay inside the summary and never abort the run.
func (m *Monitor) Run(ctx context.Context) (Summary, error) {
	summary := Summary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	log := m.log.With("run_id", summary.RunID)

	domains, err := watchlist.Load(m.cfg.Watchlist)
	if err != nil {
		return summary, err
	}
	if len(domains) == 0 {
		log.Warn("watchlist is empty, nothing to check", "path", m.cfg.Watchlist)
		summary.Duration = time.Since(summary.Started)
		return summary, nil
	}

	log.Info("starting checks",
		"domains", len(domains),
		"concurrency", m.cfg.Check.Concurrency,
		"watchlist", m.cfg.Watchlist)

	summary.Results = m.checkAll(ctx, domains)

	for _, r := range summary.Results {
		switch r.Status {
		case checker.StatusAvailable:
			summary.Available = append(summary.Available, r)
			log.Info("domain is available", "domain", r.Domain, "detail", r.Detail, "elapsed", r.Elapsed)
		case checker.StatusRegistered:
			summary.Registered++
			log.Info("domain is registered", "domain", r.Domain, "elapsed", r.Elapsed)
		default:
			summary.Errors++
			log.Warn("domain check failed", "domain", r.Domain, "detail", r.Detail)
		}
	}

	if summary.Errors == len(summary.Results) {
		log.Error("all checks failed, registration state unknown", "errors", summary.Errors)
	}

	m.writeArtifacts(log, summary)

	var notifyErr error
	if len(summary.Available) > 0 {
		payload := notify.Payload{
			RunID:       summary.RunID,
			GeneratedAt: time.Now(),
			Available:   summary.Available,
		}
		if err := m.notifier.Notify(ctx, payload); err != nil {
			log.Error("notification failed", "error", err, "available", len(summary.Available))
			notifyErr = fmt.Errorf("send notification: %w", err)
		} else {
			summary.Notified = true
			log.Info("notification sent", "available", len(summary.Available), "to", m.cfg.SMTP.To)
		}
	} else {
		log.Info("no domains available, skipping notification")
	}

	summary.Duration = time.Since(summary.Started)
	recordMetrics(summary)
	if m.cfg.Metrics != "" {
		if err := metrics.WriteTextfile(m.cfg.Metrics); err != nil {
			log.Warn("metrics textfile not written", "error", err)
		}
	}

	log.Info("run complete",
		"checked", len(summary.Results),
		"available", len(summary.Available),
		"registered", summary.Registered,
		"errors", summary.Errors,
		"notified", summary.Notified,
		"duration", summary.Duration)

	return summary, notifyErr
}

// checkAll fans the domains across a bounded worker pool. Each worker writes
// into its own slot, so result order always matches watchlist order and one
// slow or failing lookup never blocks the others' results.
func (m *Monitor) checkAll(ctx context.Context, domains []string) []checker.Result {
	results := make([]checker.Result, len(domains))
	var wg sync.WaitGroup

	limit := m.cfg.Check.Concurrency
	if limit < 1 {
		limit = 1
	}
	semaphore := make(chan struct{}, limit)

	for i, domain := range domains {
		wg.Add(1)
		go func(idx int, d string) {
			defer wg.Done()
			semaphore <- struct{}{} // acquire
			results[idx] = m.checker.Check(ctx, d)
			<-semaphore // release
		}(i, domain)
	}

	wg.Wait()
	return results
}

// writeArtifacts drops the side outputs of a run. Failures here are logged
// and swallowed: artifacts assist the surrounding automation, they are not
// the run's verdict.
func (m *Monitor) writeArtifacts(log *slog.Logger, summary Summary) {
	if m.cfg.Available != "" && len(summary.Available) > 0 {
		if err := writeAvailableFile(m.cfg.Available, summary.Available, summary.Started); err != nil {
			log.Warn("available file not written", "error", err, "path", m.cfg.Available)
		} else {
			log.Info("available domains written", "path", m.cfg.Available, "count", len(summary.Available))
		}
	}

	if m.cfg.GithubOutput != "" {
		if err := writeGithubOutput(m.cfg.GithubOutput, len(summary.Available)); err != nil {
			log.Warn("github output not written", "error", err)
		}
	}
}

// writeAvailableFile saves the available domains where shell tooling can pick
// them up: a timestamp header comment, then one domain per line.
func writeAvailableFile(path string, available []checker.Result, at time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# generated %s\n", at.Format("2006-01-02 15:04:05 MST"))
	for _, r := range available {
		b.WriteString(r.Domain)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write available file: %w", err)
	}
	return nil
}

// writeGithubOutput appends the step outputs GitHub Actions workflows read.
func writeGithubOutput(path string, available int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open github output: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "available=%t\ncount=%d\n", available > 0, available); err != nil {
		return fmt.Errorf("append github output: %w", err)
	}
	return nil
}

func recordMetrics(s Summary) {
	metrics.DomainsChecked.Set(float64(len(s.Results)))
	metrics.DomainsAvailable.Set(float64(len(s.Available)))
	metrics.DomainsRegistered.Set(float64(s.Registered))
	metrics.CheckErrors.Set(float64(s.Errors))
	metrics.RunDuration.Set(s.Duration.Seconds())
	metrics.LastRun.SetToCurrentTime()
	if s.Notified {
		metrics.NotificationSent.Set(1)
	} else {
		metrics.NotificationSent.Set(0)
	}
}
