// Package checker classifies the registration status of domain names via WHOIS.
package checker

import (
	"context"
	"strings"
	"time"

	"github.com/likexian/whois"
	"golang.org/x/time/rate"
)

// Status is the outcome of a single availability check.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusAvailable  Status = "available"
	StatusError      Status = "error"
)

// Result holds the outcome of checking one domain.
type Result struct {
	Domain    string        `json:"domain"`
	Status    Status        `json:"status"`
	Detail    string        `json:"detail,omitempty"`
	Server    string        `json:"server,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// querier is the WHOIS transport. *whois.Client satisfies it; tests
// substitute canned responses.
type querier interface {
	Whois(domain string, servers ...string) (string, error)
}

// Checker performs WHOIS lookups with a bounded timeout and shared rate limit.
type Checker struct {
	client  querier
	limiter *rate.Limiter
}

// New creates a checker. timeout bounds each WHOIS query; qps paces queries
// across concurrent checks (qps <= 0 disables pacing).
func New(timeout time.Duration, qps float64) *Checker {
	limit := rate.Inf
	if qps > 0 {
		limit = rate.Limit(qps)
	}
	return &Checker{
		client:  whois.NewClient().SetTimeout(timeout),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Patterns that indicate a domain IS registered - checked FIRST
var registeredMarkers = []string{
	"registrar:",
	"registrant:",
	"creation date:",
	"created:",
	"registry expiry date:",
	"expiration date:",
	"name server:",
	"nameserver:",
	"nserver:",
	"dnssec:",
	"registrar iana id:",
	"domain status:",
	"admin contact:",
	"tech contact:",
	"billing contact:",
}

// Patterns that indicate a domain is NOT registered
var availableMarkers = []string{
	"no match for",
	"not found",
	"no entries found",
	"domain not found",
	"no data found",
	"status: free",
	"status: available",
	"no object found",
	"object does not exist",
	"nothing found",
	"no information available",
	"is available for registration",
	"is free",
	"domain is available",
	"the queried object does not exist",
	"no such domain",
	"domain name has not been registered",
	"no matching record",
}

// Check queries WHOIS for a single domain and classifies the response.
// Lookup failures and ambiguous responses classify as StatusError, never
// StatusAvailable: a purchase decision must not ride on a guess.
func (c *Checker) Check(ctx context.Context, domain string) Result {
	result := Result{
		Domain:    domain,
		CheckedAt: time.Now(),
	}

	if err := c.limiter.Wait(ctx); err != nil {
		result.Status = StatusError
		result.Detail = "rate limit wait: " + err.Error()
		return result
	}

	server, known := ServerFor(domain)
	start := time.Now()

	var raw string
	var err error
	if known {
		result.Server = server
		raw, err = c.client.Whois(domain, server)
	} else {
		raw, err = c.client.Whois(domain)
	}
	result.Elapsed = time.Since(start)

	if err != nil {
		result.Status = StatusError
		result.Detail = "whois query: " + err.Error()
		return result
	}

	result.Status, result.Detail = classify(raw)
	return result
}

// classify maps a raw WHOIS response to a status. Registered markers are
// scanned first; premium/reserved marketing text and anything matching
// neither marker set resolve to StatusError.
func classify(raw string) (Status, string) {
	body := strings.ToLower(raw)

	if strings.TrimSpace(body) == "" {
		return StatusError, "empty whois response"
	}

	// FIRST: registration data is the most reliable signal
	for _, marker := range registeredMarkers {
		if strings.Contains(body, marker) {
			return StatusRegistered, marker
		}
	}

	// SECOND: premium/platinum reserved names are not truly available
	if (strings.Contains(body, "premium") || strings.Contains(body, "platinum")) &&
		(strings.Contains(body, "purchase") || strings.Contains(body, "contact") ||
			strings.Contains(body, "offer") || strings.Contains(body, "reserved")) {
		return StatusError, "premium or reserved name"
	}
	if strings.Contains(body, "this name is reserved") {
		return StatusError, "premium or reserved name"
	}

	// THEN: explicit not-registered statements
	for _, marker := range availableMarkers {
		if strings.Contains(body, marker) {
			return StatusAvailable, marker
		}
	}

	return StatusError, "unrecognized whois response"
}
