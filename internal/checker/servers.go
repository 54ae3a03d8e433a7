package checker

import "strings"

// whoisServers routes common TLDs straight to their authoritative WHOIS
// server, skipping the IANA referral round trip.
var whoisServers = map[string]string{
	"com":  "whois.verisign-grs.com",
	"net":  "whois.verisign-grs.com",
	"org":  "whois.pir.org",
	"io":   "whois.nic.io",
	"co":   "whois.nic.co",
	"me":   "whois.nic.me",
	"info": "whois.afilias.net",
	"top":  "whois.nic.top",
	"cn":   "whois.cnnic.cn",
	"xyz":  "whois.nic.xyz",
}

// ServerFor returns the WHOIS server for the domain's TLD. The second return
// is false when the TLD is not in the map; the caller then leaves server
// selection to the client's referral discovery.
func ServerFor(domain string) (string, bool) {
	idx := strings.LastIndex(domain, ".")
	if idx < 0 || idx == len(domain)-1 {
		return "", false
	}
	server, ok := whoisServers[strings.ToLower(domain[idx+1:])]
	return server, ok
}
