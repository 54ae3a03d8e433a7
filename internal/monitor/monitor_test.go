package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"domainwatch/internal/checker"
	"domainwatch/internal/config"
	"domainwatch/internal/notify"
)

type fakeChecker struct {
	mu       sync.Mutex
	statuses map[string]checker.Status
	delays   map[string]time.Duration
	calls    []string
}

func (f *fakeChecker) Check(_ context.Context, domain string) checker.Result {
	f.mu.Lock()
	f.calls = append(f.calls, domain)
	f.mu.Unlock()

	if d, ok := f.delays[domain]; ok {
		time.Sleep(d)
	}

	status, ok := f.statuses[domain]
	if !ok {
		status = checker.StatusRegistered
	}
	result := checker.Result{Domain: domain, Status: status, CheckedAt: time.Now()}
	if status == checker.StatusError {
		result.Detail = "simulated timeout"
	}
	return result
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu       sync.Mutex
	payloads []notify.Payload
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, p notify.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeWatchlist(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func testConfig(watchlistPath string) config.Config {
	cfg := config.Default()
	cfg.Watchlist = watchlistPath
	cfg.Available = ""
	cfg.Metrics = ""
	cfg.GithubOutput = ""
	return cfg
}

func TestRunNotifiesExactlyTheAvailableDomains(t *testing.T) {
	path := writeWatchlist(t, "a.com\nb.io\nc.net\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusRegistered,
		"b.io":  checker.StatusAvailable,
		"c.net": checker.StatusError,
	}}
	not := &fakeNotifier{}

	m := New(testConfig(path), chk, not, discardLogger())
	summary, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := chk.callCount(); got != 3 {
		t.Errorf("checked %d domains; want 3 (the erroring domain must not stop the rest)", got)
	}
	if len(not.payloads) != 1 {
		t.Fatalf("notifier called %d times; want exactly once", len(not.payloads))
	}
	p := not.payloads[0]
	if len(p.Available) != 1 || p.Available[0].Domain != "b.io" {
		t.Errorf("payload = %+v; want exactly b.io", p.Available)
	}
	if p.RunID != summary.RunID || p.RunID == "" {
		t.Errorf("payload run ID %q does not match summary run ID %q", p.RunID, summary.RunID)
	}
	if p.GeneratedAt.IsZero() {
		t.Error("payload is missing its timestamp")
	}

	if summary.Registered != 1 || summary.Errors != 1 || len(summary.Available) != 1 {
		t.Errorf("partition = reg %d, err %d, avail %d; want 1/1/1",
			summary.Registered, summary.Errors, len(summary.Available))
	}
	if !summary.Notified {
		t.Error("summary should record the delivered notification")
	}
}

func TestRunSkipsNotifierWhenNothingAvailable(t *testing.T) {
	path := writeWatchlist(t, "a.com\nb.io\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusRegistered,
		"b.io":  checker.StatusError,
	}}
	not := &fakeNotifier{}

	m := New(testConfig(path), chk, not, discardLogger())
	summary, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(not.payloads) != 0 {
		t.Errorf("notifier called %d times; want none without available domains", len(not.payloads))
	}
	if summary.Notified {
		t.Error("summary claims a notification that never happened")
	}
}

func TestRunReturnsNotifierFailure(t *testing.T) {
	path := writeWatchlist(t, "a.com\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusAvailable,
	}}
	not := &fakeNotifier{err: errors.New("535 authentication failed")}

	m := New(testConfig(path), chk, not, discardLogger())
	summary, err := m.Run(context.Background())
	if err == nil {
		t.Fatal("Run should surface the notification failure")
	}
	if !strings.Contains(err.Error(), "send notification") {
		t.Errorf("error = %v; want a send notification wrap", err)
	}

	// Checking succeeded; delivery failing must not erase the results.
	if len(summary.Results) != 1 || len(summary.Available) != 1 {
		t.Errorf("summary lost results: %+v", summary)
	}
	if summary.Notified {
		t.Error("summary claims delivery despite the failure")
	}
}

func TestRunMissingWatchlistIsFatal(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent.txt"))
	not := &fakeNotifier{}

	m := New(cfg, &fakeChecker{}, not, discardLogger())
	_, err := m.Run(context.Background())
	if err == nil {
		t.Fatal("Run without a watchlist should fail")
	}
	if len(not.payloads) != 0 {
		t.Error("notifier must not run without a watchlist")
	}
}

func TestRunEmptyWatchlistSucceedsQuietly(t *testing.T) {
	path := writeWatchlist(t, "# all domains secured already\n\n")
	chk := &fakeChecker{}
	not := &fakeNotifier{}

	m := New(testConfig(path), chk, not, discardLogger())
	summary, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if chk.callCount() != 0 || len(not.payloads) != 0 {
		t.Error("empty watchlist should check nothing and notify nobody")
	}
	if len(summary.Results) != 0 {
		t.Errorf("summary.Results = %v; want none", summary.Results)
	}
}

func TestRunPreservesWatchlistOrder(t *testing.T) {
	domains := []string{"one.com", "two.com", "three.com", "four.com", "five.com", "six.com"}
	path := writeWatchlist(t, strings.Join(domains, "\n")+"\n")

	// Later entries finish first, so slot addressing is what keeps order.
	delays := make(map[string]time.Duration)
	for i, d := range domains {
		delays[d] = time.Duration(len(domains)-i) * 5 * time.Millisecond
	}
	chk := &fakeChecker{delays: delays}

	cfg := testConfig(path)
	cfg.Check.Concurrency = 3

	m := New(cfg, chk, &fakeNotifier{}, discardLogger())
	summary, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.Results) != len(domains) {
		t.Fatalf("got %d results; want %d", len(summary.Results), len(domains))
	}
	for i, r := range summary.Results {
		if r.Domain != domains[i] {
			t.Errorf("results[%d] = %s; want %s", i, r.Domain, domains[i])
		}
	}
}

func TestRunWritesAvailableFile(t *testing.T) {
	path := writeWatchlist(t, "a.com\nb.io\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusAvailable,
		"b.io":  checker.StatusRegistered,
	}}

	cfg := testConfig(path)
	cfg.Available = filepath.Join(t.TempDir(), "available_domains.txt")

	m := New(cfg, chk, &fakeNotifier{}, discardLogger())
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(cfg.Available)
	if err != nil {
		t.Fatalf("available file not written: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "#") {
		t.Errorf("available file %q missing its timestamp header", out)
	}
	if !strings.Contains(out, "a.com\n") {
		t.Errorf("available file %q missing a.com", out)
	}
	if strings.Contains(out, "b.io") {
		t.Errorf("available file %q lists a registered domain", out)
	}
}

func TestRunSkipsAvailableFileWhenNothingAvailable(t *testing.T) {
	path := writeWatchlist(t, "a.com\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusRegistered,
	}}

	cfg := testConfig(path)
	cfg.Available = filepath.Join(t.TempDir(), "available_domains.txt")

	m := New(cfg, chk, &fakeNotifier{}, discardLogger())
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(cfg.Available); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("available file should not exist without available domains, stat err = %v", err)
	}
}

func TestRunAppendsGithubOutput(t *testing.T) {
	path := writeWatchlist(t, "a.com\nb.io\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusAvailable,
		"b.io":  checker.StatusAvailable,
	}}

	cfg := testConfig(path)
	cfg.GithubOutput = filepath.Join(t.TempDir(), "gh_output")

	m := New(cfg, chk, &fakeNotifier{}, discardLogger())
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(cfg.GithubOutput)
	if err != nil {
		t.Fatalf("github output not written: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "available=true\n") {
		t.Errorf("github output %q missing available=true", out)
	}
	if !strings.Contains(out, "count=2\n") {
		t.Errorf("github output %q missing count=2", out)
	}
}

func TestRunGithubOutputWithoutAvailability(t *testing.T) {
	path := writeWatchlist(t, "a.com\n")
	chk := &fakeChecker{statuses: map[string]checker.Status{
		"a.com": checker.StatusRegistered,
	}}

	cfg := testConfig(path)
	cfg.GithubOutput = filepath.Join(t.TempDir(), "gh_output")

	m := New(cfg, chk, &fakeNotifier{}, discardLogger())
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(cfg.GithubOutput)
	if err != nil {
		t.Fatalf("github output not written: %v", err)
	}
	if !strings.Contains(string(data), "available=false\n") {
		t.Errorf("github output %q missing available=false", string(data))
	}
}
