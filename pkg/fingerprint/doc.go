// Package fingerprint derives a request fingerprint used to bind session tokens to the
// context they were issued in.
//
// The fingerprint is never stored. The session engine recomputes it on every request and
// mixes it into the token hash and the encryption context, so a cookie replayed from a
// different context fails verification.
//
// Components, selected with options or Config:
//   - TLS channel binding (tls-unique), on by default
//   - User-Agent header, on by default
//   - request scheme, on by default
//   - client IP address (see pkg/clientip), off by default
//   - Accept-* headers and the set of present browser headers, off by default
//
// Usage:
//
//	fp := fingerprint.Generate(r, fingerprint.DefaultConfig().Options()...)
//
// Config carries the same switches as env flags (SSI, UA, ADDR, SCHEME, ACCEPT, HEADERS)
// so they can be loaded under a prefix such as SESSION_CHECK_.
//
// IP binding produces false positives for mobile and VPN users; enable it only when
// re-authentication is acceptable.
package fingerprint
