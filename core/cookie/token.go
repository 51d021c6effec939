package cookie

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token is the decoded content of a session cookie.
type Token struct {
	ID        []byte
	Expires   time.Time
	UseBefore time.Time // zero when idle timeout is disabled
	Data      []byte    // set only when the payload travels in the cookie
	Hash      []byte
}

// Fields returns the field count of a token: 4 with embedded data, 3 otherwise.
func Fields(embedded bool) int {
	if embedded {
		return 4
	}
	return 3
}

// Encode renders tok as delimiter-joined fields:
// id, expires:usebefore (unix seconds), [data,] hash.
func (c *Codec) Encode(tok Token, embedded bool) string {
	fields := make([]string, 0, Fields(embedded))
	fields = append(fields,
		c.enc.Encode(tok.ID),
		formatExpiry(tok.Expires, tok.UseBefore),
	)
	if embedded {
		fields = append(fields, c.enc.Encode(tok.Data))
	}
	fields = append(fields, c.enc.Encode(tok.Hash))
	return strings.Join(fields, c.delimiter)
}

// Parse decodes value into a Token. The exact field count for the storage mode is required,
// every field must decode and expires must be strictly after now; otherwise the result
// wraps ErrInvalidToken and no field is returned.
func (c *Codec) Parse(value string, embedded bool, now time.Time) (Token, error) {
	parts := strings.Split(value, c.delimiter)
	if len(parts) != Fields(embedded) {
		return Token{}, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidToken, Fields(embedded), len(parts))
	}

	id, err := c.enc.Decode(parts[0])
	if err != nil || len(id) == 0 {
		return Token{}, fmt.Errorf("%w: id", ErrInvalidToken)
	}

	expires, usebefore, err := parseExpiry(parts[1])
	if err != nil {
		return Token{}, err
	}
	if expires.Unix() <= now.Unix() {
		return Token{}, fmt.Errorf("%w: expired at %d", ErrInvalidToken, expires.Unix())
	}

	tok := Token{ID: id, Expires: expires, UseBefore: usebefore}

	hashField := parts[2]
	if embedded {
		if tok.Data, err = c.enc.Decode(parts[2]); err != nil {
			return Token{}, fmt.Errorf("%w: data", ErrInvalidToken)
		}
		hashField = parts[3]
	}

	if tok.Hash, err = c.enc.Decode(hashField); err != nil || len(tok.Hash) == 0 {
		return Token{}, fmt.Errorf("%w: hash", ErrInvalidToken)
	}

	return tok, nil
}

func formatExpiry(expires, usebefore time.Time) string {
	var ub int64
	if !usebefore.IsZero() {
		ub = usebefore.Unix()
	}
	return strconv.FormatInt(expires.Unix(), 10) + ":" + strconv.FormatInt(ub, 10)
}

func parseExpiry(field string) (time.Time, time.Time, error) {
	exp, ub, hasUB := strings.Cut(field, ":")

	expires, err := strconv.ParseInt(exp, 10, 64)
	if err != nil || expires <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: expires is not numeric", ErrInvalidToken)
	}

	var usebefore time.Time
	if hasUB {
		v, err := strconv.ParseInt(ub, 10, 64)
		if err != nil || v < 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: usebefore is not numeric", ErrInvalidToken)
		}
		if v > 0 {
			usebefore = time.Unix(v, 0)
		}
	}

	return time.Unix(expires, 0), usebefore, nil
}
