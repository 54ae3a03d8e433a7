// Package metrics exposes run statistics through a private Prometheus
// registry. One-shot runs have nothing to scrape, so the registry is dumped
// in textfile-collector format for node_exporter to pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	// DomainsChecked is the number of watchlist domains checked in the last run.
	DomainsChecked = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_domains_checked",
		Help: "Number of watchlist domains checked in the last run.",
	})

	// DomainsAvailable is the number of domains found available for registration.
	DomainsAvailable = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_domains_available",
		Help: "Number of domains found available in the last run.",
	})

	// DomainsRegistered is the number of domains confirmed registered.
	DomainsRegistered = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_domains_registered",
		Help: "Number of domains confirmed registered in the last run.",
	})

	// CheckErrors is the number of lookups that failed or were ambiguous.
	CheckErrors = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_check_errors",
		Help: "Number of failed or ambiguous lookups in the last run.",
	})

	// NotificationSent is 1 when the last run delivered an alert email.
	NotificationSent = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_notification_sent",
		Help: "Whether the last run delivered an alert email (0 or 1).",
	})

	// RunDuration is the wall time of the last run.
	RunDuration = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_run_duration_seconds",
		Help: "Wall time of the last run in seconds.",
	})

	// LastRun is the completion timestamp of the last run.
	LastRun = factory.NewGauge(prometheus.GaugeOpts{
		Name: "domainwatch_last_run_timestamp_seconds",
		Help: "Unix timestamp of the last completed run.",
	})
)

// WriteTextfile dumps the registry to path in the format the node_exporter
// textfile collector expects. The write is atomic (temp file plus rename).
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
