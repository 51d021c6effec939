// Package cookie implements the wire format of session tokens.
//
// # Features
//
//   - Token encoding and strict parsing for server-side and embedded payloads
//   - Transparent chunking of values larger than one cookie
//   - Expiry of surplus chunks when a value shrinks
//   - Set-Cookie emission that replaces earlier lines for the same name
//
// # Token Format
//
// A token is a set of delimiter-joined fields, each encoded with the configured
// encoder except the expiry pair:
//
//	<id>|<expires>:<usebefore>|<hash>          server-side storage
//	<id>|<expires>:<usebefore>|<data>|<hash>   cookie storage
//
// Expiry values are unix seconds. usebefore is 0 when idle timeout is disabled.
//
//	value := c.Encode(cookie.Token{ID: id, Expires: exp, Hash: mac}, false)
//	tok, err := c.Parse(value, false, time.Now())
//	if errors.Is(err, cookie.ErrInvalidToken) {
//		// wrong field count, bad encoding, expired or idle-expired
//	}
//
// Parse checks shape and deadlines only. The session engine verifies the hash.
//
// # Basic Usage
//
//	c, err := cookie.New(cookie.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	cookies, err := c.Render(value, expiresAt, 0)
//	if err != nil {
//		return err // cookie.ErrCookieTooLarge when MaxFragments is not enough
//	}
//	cookie.Emit(w.Header(), cookies...)
//
//	value, chunks, err := c.Read(r) // cookie.ErrCookieNotFound without a cookie
//
// # Chunking
//
// Values longer than MaxFragmentSize are split across cookies named name, name_2,
// name_3, ... Every chunk except the last ends with a "0" marker. Reassembly walks
// the names in order until one is missing, bounded by MaxFragments, so a last chunk
// that happens to end in "0" is never mistaken for a continuation.
//
//	c, err := cookie.New(cookie.Config{Name: "sess", MaxFragmentSize: 10, Path: "/", SameSite: "Lax"})
//	cookies, err := c.Render(value, expiresAt, 0) // sess=..., sess_2=...
//
// Pass the chunk count read from the request as previous so stale chunks are expired:
//
//	_, chunks, _ := c.Read(r)
//	cookies, err := c.Render(shorter, expiresAt, chunks)
//
// Expire renders deletions for logout:
//
//	cookie.Emit(w.Header(), c.Expire(chunks)...)
//
// # Configuration
//
// Config fields load from environment variables under the SESSION_ prefix:
//
//	SESSION_COOKIE_NAME        base name (default "session")
//	SESSION_COOKIE_PERSISTENT  emit Expires and Max-Age
//	SESSION_COOKIE_DOMAIN      Domain attribute
//	SESSION_COOKIE_PATH        Path attribute (default "/")
//	SESSION_COOKIE_SAMESITE    Lax, Strict, None or off
//	SESSION_COOKIE_SECURE      Secure attribute
//	SESSION_COOKIE_HTTPONLY    HttpOnly attribute (default true)
//	SESSION_COOKIE_DELIMITER   field separator (default "|")
//	SESSION_COOKIE_MAXSIZE     value bytes per chunk (default 4000)
//	SESSION_COOKIE_MAXCHUNKS   chunk limit (default 10)
//
// SameSite=None forces Secure. "off" omits the attribute. Persistent cookies carry
// Expires and Max-Age, expiring cookies carry the Unix epoch and Max-Age=0. An empty name
// or a delimiter containing ':' fails New with ErrInvalidConfig.
//
// # Size Limits
//
// Browsers cap a cookie at about 4KB including its name and attributes, and most cap the
// number of cookies per domain. Keep MaxFragmentSize under 4000 and prefer server-side
// storage for large payloads.
//
// # Security Considerations
//
// The codec neither signs nor encrypts. Integrity and confidentiality come from the session
// engine, which hashes and seals the fields before they reach this package.
package cookie
