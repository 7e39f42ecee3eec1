package adapters

import (
	"net"

	"proxypool/internal/logger"
)

// allowedProtocols mirrors the proxies table's CHECK constraint. A candidate
// outside this set (or with a malformed IP/port) would fail the repository's
// bulk unnest insert and take every other candidate from the same adapter
// run down with it, so adapters filter before appending rather than after.
var allowedProtocols = map[string]bool{
	"http":   true,
	"https":  true,
	"socks4": true,
	"socks5": true,
}

// validCandidate reports whether ip, port, and protocol are all
// well-formed enough to survive the store's constraints. Adapters call this
// per row and drop (log + skip) anything that fails, so one bad line from a
// scraped source never costs the rest of that source's batch.
func validCandidate(source, ip string, port int, protocol string) bool {
	if net.ParseIP(ip) == nil {
		logger.Log.Warn("dropping candidate: invalid IP", "source", source, "ip", ip)
		return false
	}
	if port < 1 || port > 65535 {
		logger.Log.Warn("dropping candidate: invalid port", "source", source, "ip", ip, "port", port)
		return false
	}
	if !allowedProtocols[protocol] {
		logger.Log.Warn("dropping candidate: unrecognized protocol", "source", source, "ip", ip, "protocol", protocol)
		return false
	}
	return true
}
