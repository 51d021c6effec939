// Package token generates opaque session identifiers.
//
// Three schemes are available:
//   - random: N bytes from crypto/rand (16 by default)
//   - uuid: RFC 4122 version 4 UUIDs
//   - ulid: lexicographically sortable ULIDs (creation time is visible in the id)
//
// Usage:
//
//	gen, err := token.NewGenerator("random", 32)
//	if err != nil {
//		log.Fatal(err)
//	}
//	id, err := gen.New()
//
// Identifiers are raw bytes; callers choose the text encoding.
package token
