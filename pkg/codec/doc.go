// Package codec provides the text encoders and data serializers used by session tokens.
//
// Both are closed sets resolved by name once at startup:
//
//	enc, err := codec.NewEncoder("base64") // or "base16"
//	ser, err := codec.NewSerializer("json") // or "gob"
//
//	field := enc.Encode(id)
//	raw, err := enc.Decode(field) // wraps codec.ErrDecode on malformed input
//
// The base64 encoder uses the URL-safe alphabet without padding, so encoded fields
// never contain the "|" delimiter or characters that need quoting in cookies.
package codec
