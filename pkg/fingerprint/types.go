package fingerprint

// options selects the request attributes that feed the fingerprint.
type options struct {
	// includeTransportID binds to the TLS channel (tls-unique). Empty on plain HTTP and TLS 1.3.
	// Default: true
	includeTransportID bool

	// includeUserAgent includes the User-Agent header.
	// Default: true
	includeUserAgent bool

	// includeIP includes the client IP address.
	// WARNING: IP addresses change frequently (mobile networks, VPNs, corporate proxies).
	// Default: false
	includeIP bool

	// includeScheme includes the request scheme (http or https).
	// Default: true
	includeScheme bool

	// includeAcceptHeaders includes Accept-* headers.
	// Default: false
	includeAcceptHeaders bool

	// includeHeaderSet includes which standard headers are present.
	// Default: false
	includeHeaderSet bool
}

// Option is a functional option for configuring fingerprint generation.
type Option func(*options)

// WithIP includes the client IP address in the fingerprint.
// WARNING: This will cause false positives for mobile users, VPN users, and users behind dynamic proxies.
func WithIP() Option {
	return func(o *options) {
		o.includeIP = true
	}
}

// WithoutUserAgent excludes the User-Agent header from the fingerprint.
func WithoutUserAgent() Option {
	return func(o *options) {
		o.includeUserAgent = false
	}
}

// WithoutTransportID excludes the TLS channel binding.
func WithoutTransportID() Option {
	return func(o *options) {
		o.includeTransportID = false
	}
}

// WithoutScheme excludes the request scheme.
func WithoutScheme() Option {
	return func(o *options) {
		o.includeScheme = false
	}
}

// WithAcceptHeaders adds Accept, Accept-Language and Accept-Encoding.
// These can change with browser extensions or language settings.
func WithAcceptHeaders() Option {
	return func(o *options) {
		o.includeAcceptHeaders = true
	}
}

// WithHeaderSet adds the set of standard browser headers present on the request.
func WithHeaderSet() Option {
	return func(o *options) {
		o.includeHeaderSet = true
	}
}

// Config maps the session check flags to options.
type Config struct {
	TransportID bool `env:"SSI" envDefault:"true"`
	UserAgent   bool `env:"UA" envDefault:"true"`
	RemoteAddr  bool `env:"ADDR" envDefault:"false"`
	Scheme      bool `env:"SCHEME" envDefault:"true"`
	Accept      bool `env:"ACCEPT" envDefault:"false"`
	HeaderSet   bool `env:"HEADERS" envDefault:"false"`
}

// DefaultConfig returns the default check flags.
func DefaultConfig() Config {
	return Config{TransportID: true, UserAgent: true, RemoteAddr: false, Scheme: true}
}

// Options converts the flags into generation options.
func (c Config) Options() []Option {
	var opts []Option
	if !c.TransportID {
		opts = append(opts, WithoutTransportID())
	}
	if !c.UserAgent {
		opts = append(opts, WithoutUserAgent())
	}
	if c.RemoteAddr {
		opts = append(opts, WithIP())
	}
	if !c.Scheme {
		opts = append(opts, WithoutScheme())
	}
	if c.Accept {
		opts = append(opts, WithAcceptHeaders())
	}
	if c.HeaderSet {
		opts = append(opts, WithHeaderSet())
	}
	return opts
}

// defaultOptions excludes the IP address to avoid false positives from mobile networks, VPNs, and corporate proxies.
func defaultOptions() *options {
	return &options{
		includeTransportID: true,
		includeUserAgent:   true,
		includeScheme:      true,
	}
}

func applyOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) empty() bool {
	return !o.includeTransportID && !o.includeUserAgent && !o.includeIP &&
		!o.includeScheme && !o.includeAcceptHeaders && !o.includeHeaderSet
}
