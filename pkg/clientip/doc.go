// Package clientip extracts real client IP addresses from HTTP requests.
//
// Proxy headers are checked in priority order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// Every candidate is parsed with net.ParseIP and normalized; invalid values and the
// unspecified address are skipped. If nothing valid is found the raw RemoteAddr is
// returned, so GetIP never fails:
//
//	ip := clientip.GetIP(r)
//
// Headers are trusted as-is. Only rely on them when the service sits behind a proxy
// that overwrites them; the session fingerprint uses this value for its remote
// address check.
package clientip
