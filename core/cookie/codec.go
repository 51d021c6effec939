package cookie

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/codec"
)

const (
	// DefaultMaxFragmentSize leaves room for attributes within the 4KB browser limit.
	DefaultMaxFragmentSize = 4000
	// DefaultMaxFragments bounds chunk reassembly.
	DefaultMaxFragments = 10
	// continuation marks every chunk except the last.
	continuation = "0"
)

// Codec renders session tokens into cookies and reads them back.
// It is safe for concurrent use.
type Codec struct {
	name       string
	domain     string
	path       string
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
	persistent bool
	delimiter  string
	maxSize    int
	maxChunks  int
	enc        codec.Encoder
	now        func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithEncoder sets the field encoder (default: base64).
func WithEncoder(enc codec.Encoder) Option {
	return func(c *Codec) {
		if enc != nil {
			c.enc = enc
		}
	}
}

// WithClock sets the time source used for Max-Age.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Codec from cfg. Zero sizes fall back to the defaults.
func New(cfg Config, opts ...Option) (*Codec, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: empty cookie name", ErrInvalidConfig)
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = "|"
	}
	if strings.Contains(cfg.Delimiter, ":") {
		return nil, fmt.Errorf("%w: delimiter must not contain ':'", ErrInvalidConfig)
	}

	sameSite, err := ParseSameSite(cfg.SameSite)
	if err != nil {
		return nil, err
	}

	enc, _ := codec.NewEncoder(codec.EncoderBase64)
	c := &Codec{
		name:       cfg.Name,
		domain:     cfg.Domain,
		path:       cfg.Path,
		sameSite:   sameSite,
		secure:     cfg.Secure || sameSite == http.SameSiteNoneMode,
		httpOnly:   cfg.HttpOnly,
		persistent: cfg.Persistent,
		delimiter:  cfg.Delimiter,
		maxSize:    cfg.MaxFragmentSize,
		maxChunks:  cfg.MaxFragments,
		enc:        enc,
		now:        time.Now,
	}
	if c.maxSize <= 0 {
		c.maxSize = DefaultMaxFragmentSize
	}
	if c.maxChunks <= 0 {
		c.maxChunks = DefaultMaxFragments
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Name returns the base cookie name.
func (c *Codec) Name() string {
	return c.name
}

// Encoder returns the field encoder.
func (c *Codec) Encoder() codec.Encoder {
	return c.enc
}

// ChunkName returns the cookie name of the zero-based chunk i: name, name_2, name_3, ...
func (c *Codec) ChunkName(i int) string {
	if i == 0 {
		return c.name
	}
	return c.name + "_" + strconv.Itoa(i+1)
}

// Render splits value into cookies of at most MaxFragmentSize value bytes. Every chunk
// except the last gets a trailing "0" marker. previous is the chunk count seen on the
// request; surplus chunk names are expired so stale fragments cannot be reassembled.
func (c *Codec) Render(value string, expires time.Time, previous int) ([]*http.Cookie, error) {
	n := max(1, (len(value)+c.maxSize-1)/c.maxSize)
	if n > c.maxChunks {
		return nil, ErrCookieTooLarge{
			Name: c.name,
			Size: len(value),
			Max:  c.maxSize * c.maxChunks,
		}
	}

	cookies := make([]*http.Cookie, 0, max(n, previous))
	for i := range n {
		part := value[i*c.maxSize : min(len(value), (i+1)*c.maxSize)]
		if i < n-1 {
			part += continuation
		}
		cookies = append(cookies, c.cookie(c.ChunkName(i), part, expires))
	}

	for i := n; i < min(previous, c.maxChunks); i++ {
		cookies = append(cookies, c.expired(c.ChunkName(i)))
	}

	return cookies, nil
}

// Expire renders immediately expiring cookies for the first count chunk names.
func (c *Codec) Expire(count int) []*http.Cookie {
	count = min(max(count, 1), c.maxChunks)
	cookies := make([]*http.Cookie, 0, count)
	for i := range count {
		cookies = append(cookies, c.expired(c.ChunkName(i)))
	}
	return cookies
}

// Read reassembles the cookie value strictly by increasing chunk index until a name is
// missing. It returns the value and the number of chunks read.
func (c *Codec) Read(r *http.Request) (string, int, error) {
	first, err := r.Cookie(c.name)
	if err != nil {
		return "", 0, ErrCookieNotFound
	}

	parts := []string{first.Value}
	for i := 1; i < c.maxChunks; i++ {
		next, err := r.Cookie(c.ChunkName(i))
		if err != nil {
			break
		}
		parts = append(parts, next.Value)
	}

	var b strings.Builder
	for i, part := range parts {
		if i < len(parts)-1 {
			var ok bool
			if part, ok = strings.CutSuffix(part, continuation); !ok {
				return "", len(parts), fmt.Errorf("%w: chunk %d lacks continuation marker", ErrInvalidToken, i+1)
			}
		}
		b.WriteString(part)
	}

	return b.String(), len(parts), nil
}

func (c *Codec) cookie(name, value string, expires time.Time) *http.Cookie {
	ck := c.base(name, value)
	if c.persistent {
		ck.Expires = expires.UTC()
		ck.MaxAge = max(1, int(expires.Sub(c.now()).Seconds()))
	}
	return ck
}

func (c *Codec) expired(name string) *http.Cookie {
	ck := c.base(name, "")
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

func (c *Codec) base(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path,
		Domain:   c.domain,
		Secure:   c.secure,
		HttpOnly: c.httpOnly,
		SameSite: c.sameSite,
	}
}

// Emit writes cookies as Set-Cookie header lines, replacing earlier lines for the same
// cookie names so repeated saves within one response leave a single line per name.
func Emit(h http.Header, cookies ...*http.Cookie) {
	for _, ck := range cookies {
		line := ck.String()
		if line == "" {
			continue
		}

		prefix := ck.Name + "="
		kept := h.Values("Set-Cookie")[:0:0]
		for _, v := range h.Values("Set-Cookie") {
			if !strings.HasPrefix(v, prefix) {
				kept = append(kept, v)
			}
		}
		h.Del("Set-Cookie")
		for _, v := range kept {
			h.Add("Set-Cookie", v)
		}
		h.Add("Set-Cookie", line)
	}
}
