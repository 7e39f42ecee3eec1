package validator

import "strings"

// Anonymity levels a validated proxy can be classified into.
const (
	AnonymityTransparent = "transparent"
	AnonymityAnonymous   = "anonymous"
	AnonymityElite       = "elite"
)

// suspiciousHeaders are response headers that, when present with a non-empty
// value, indicate the origin server can tell it was reached through a proxy
// even though the proxy's own IP was not echoed back.
var suspiciousHeaders = []string{
	"x-forwarded-for",
	"x-real-ip",
	"via",
	"x-proxy-id",
	"proxy-connection",
	"forwarded",
	"client-ip",
	"x-client-ip",
}

// classifyAnonymity implements the anonymity algorithm: if the proxy's own
// IP appears verbatim in any response header value the proxy is transparent;
// else if any proxy-revealing header name carries a non-empty value the
// proxy is anonymous; otherwise it is elite.
func classifyAnonymity(headers map[string]string, proxyIP string) string {
	for _, v := range headers {
		if proxyIP != "" && strings.Contains(v, proxyIP) {
			return AnonymityTransparent
		}
	}

	lower := make(map[string]string, len(headers))
	for k, v := range headers {
		lower[strings.ToLower(k)] = v
	}

	for _, name := range suspiciousHeaders {
		if lower[name] != "" {
			return AnonymityAnonymous
		}
	}

	return AnonymityElite
}
