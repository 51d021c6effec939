package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrymomot/sessionkit/pkg/clientip"
)

const (
	fingerprintVersion = "v1:"
	// fingerprintHashLen keeps 128 of the 256 SHA-256 bits.
	fingerprintHashLen = 16
)

// Generate creates a request fingerprint in the form "v1:hash".
// With every component disabled it returns the empty string, which disables binding.
//
// Defaults cover the TLS channel binding, User-Agent and scheme:
//
//	fp := fingerprint.Generate(r)
//	fp := fingerprint.Generate(r, fingerprint.WithIP(), fingerprint.WithoutScheme())
func Generate(r *http.Request, opts ...Option) string {
	o := applyOptions(opts...)
	if o.empty() {
		return ""
	}

	var components []string

	if o.includeTransportID && r.TLS != nil && len(r.TLS.TLSUnique) > 0 {
		components = append(components, hex.EncodeToString(r.TLS.TLSUnique))
	}

	if o.includeUserAgent {
		components = append(components, r.UserAgent())
	}

	if o.includeIP {
		components = append(components, clientip.GetIP(r))
	}

	if o.includeScheme {
		components = append(components, scheme(r))
	}

	if o.includeAcceptHeaders {
		components = append(components,
			r.Header.Get("Accept-Language"),
			r.Header.Get("Accept-Encoding"),
			r.Header.Get("Accept"),
		)
	}

	if o.includeHeaderSet {
		components = append(components, getHeaders(r))
	}

	filtered := make([]string, 0, len(components))
	for _, comp := range components {
		if comp != "" {
			filtered = append(filtered, comp)
		}
	}

	// Pipe delimiter keeps ["ab", "c"] and ["a", "bc"] apart.
	combined := strings.Join(filtered, "|")
	hash := sha256.Sum256([]byte(combined))

	return fingerprintVersion + hex.EncodeToString(hash[:fingerprintHashLen])
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// getHeaders fingerprints the presence of common browser headers, not their values.
// Frequently changing headers (cookies, cache directives) are excluded.
func getHeaders(r *http.Request) string {
	var headerNames []string
	for name := range r.Header {
		switch strings.ToLower(name) {
		case "user-agent", "accept", "accept-language", "accept-encoding",
			"connection", "upgrade-insecure-requests", "sec-fetch-dest",
			"sec-fetch-mode", "sec-fetch-site":
			headerNames = append(headerNames, strings.ToLower(name))
		}
	}

	sort.Strings(headerNames)
	return strings.Join(headerNames, ",")
}
