package lore

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/viant/lore/api"
	"github.com/viant/lore/client"
	"github.com/viant/lore/client/auth"
	"github.com/viant/lore/client/auth/store"
	authtransport "github.com/viant/lore/client/auth/transport"
)

const (
	EnvHost   = "LORE_HOST"
	EnvPort   = "LORE_PORT"
	EnvScheme = "LORE_SCHEME"

	DefaultPort   = 8000
	DefaultScheme = "http"
)

// ErrMissingHost is returned when no API host is configured.
var ErrMissingHost = errors.New(EnvHost + " is not defined")

// ClientOptions
//
// defines options for configuring a lore client.
type ClientOptions struct {
	Host           string      `yaml:"host" json:"host,omitempty"  short:"H" long:"host" env:"LORE_HOST" description:"api host"`
	Port           int         `yaml:"port,omitempty" json:"port,omitempty"  short:"P" long:"port" env:"LORE_PORT" description:"api port"`
	Scheme         string      `yaml:"scheme,omitempty" json:"scheme,omitempty"  long:"scheme" env:"LORE_SCHEME" description:"api scheme" choice:"http" choice:"https"`
	TimeoutSeconds int         `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds,omitempty"  long:"timeout" description:"request timeout in seconds"`
	Auth           *ClientAuth `yaml:"auth,omitempty" json:"auth,omitempty" group:"auth"`

	// Registerer receives client metrics when set.
	Registerer prometheus.Registerer `yaml:"-" json:"-"`
	Logger     *zerolog.Logger       `yaml:"-" json:"-"`

	// cachedAuthRT keeps one refresh coordinator per options value so that
	// clients built from the same options never refresh concurrently.
	cachedAuthRT *authtransport.RoundTripper
	mux          sync.Mutex
	sessions     []*auth.Session
}

// ClientAuth defines token persistence options.
type ClientAuth struct {
	StoreType             string `yaml:"store,omitempty" json:"store,omitempty"  short:"s" long:"store" description:"token store" choice:"memory" choice:"file" choice:"secure"`
	StoreURL              string `yaml:"storeURL,omitempty" json:"storeURL,omitempty"  long:"store-url" description:"token store location, any afs URL"`
	EncryptionKey         string `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty"  short:"k" long:"key" description:"secure store encryption key"`
	RefreshTimeoutSeconds int    `yaml:"refreshTimeoutSeconds,omitempty" json:"refreshTimeoutSeconds,omitempty"  long:"refresh-timeout" description:"token refresh timeout in seconds"`

	// Store allows injecting a token store, it takes precedence over StoreType.
	Store store.Store `yaml:"-" json:"-"`
}

// Client bundles the configured lore client components.
type Client struct {
	*api.Service
	Session   *auth.Session
	Facade    *client.Client
	Transport *authtransport.RoundTripper
}

// ClientOptionsFromEnv loads options from the environment, reading the supplied .env files
// first when they exist.
func ClientOptionsFromEnv(envFiles ...string) (*ClientOptions, error) {
	var existing []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}
	ret := &ClientOptions{Host: os.Getenv(EnvHost), Scheme: os.Getenv(EnvScheme)}
	if value := os.Getenv(EnvPort); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvPort, value, err)
		}
		ret.Port = port
	}
	return ret, ret.Init()
}

// Init applies defaults and validates options
func (c *ClientOptions) Init() error {
	if strings.TrimSpace(c.Host) == "" {
		return ErrMissingHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.Auth == nil {
		c.Auth = &ClientAuth{}
	}
	if c.Auth.StoreType == "" {
		c.Auth.StoreType = "memory"
	}
	return nil
}

// BaseURL returns the API base URL
func (c *ClientOptions) BaseURL() string {
	return c.Scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ClientOptions) logger() zerolog.Logger {
	if c.Logger != nil {
		return *c.Logger
	}
	return zerolog.Nop()
}

// NewClient creates a lore client configured via ClientOptions.
func NewClient(options *ClientOptions) (*Client, error) {
	if err := options.Init(); err != nil {
		return nil, err
	}
	ret := &Client{}
	rt, err := options.authTransport()
	if err != nil {
		return nil, err
	}
	clientOptions := []client.Option{client.WithTransport(rt), client.WithLogger(options.logger())}
	if options.TimeoutSeconds > 0 {
		clientOptions = append(clientOptions, client.WithTimeout(time.Duration(options.TimeoutSeconds)*time.Second))
	}
	facade, err := client.New(options.BaseURL(), clientOptions...)
	if err != nil {
		return nil, err
	}
	ret.Transport = rt
	ret.Facade = facade
	ret.Session = auth.NewSession(facade, rt.Store(), auth.WithLogger(options.logger()))
	ret.Service = api.New(facade)
	options.mux.Lock()
	options.sessions = append(options.sessions, ret.Session)
	options.mux.Unlock()
	return ret, nil
}

// expired invalidates every session sharing the auth transport
func (c *ClientOptions) expired() {
	c.mux.Lock()
	sessions := append([]*auth.Session(nil), c.sessions...)
	c.mux.Unlock()
	for _, session := range sessions {
		session.Invalidate()
	}
}

// authTransport builds the authenticating transport once and reuses it across clients.
func (c *ClientOptions) authTransport() (*authtransport.RoundTripper, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.cachedAuthRT != nil {
		return c.cachedAuthRT, nil
	}
	tokens, err := c.Auth.tokenStore()
	if err != nil {
		return nil, err
	}
	transportOpts := []authtransport.Option{
		authtransport.WithStore(tokens),
		authtransport.WithLogger(c.logger()),
		authtransport.WithOnExpired(c.expired),
	}
	if c.Registerer != nil {
		transportOpts = append(transportOpts, authtransport.WithMetrics(authtransport.NewMetrics(c.Registerer)))
	}
	if c.Auth.RefreshTimeoutSeconds > 0 {
		transportOpts = append(transportOpts, authtransport.WithRefreshTimeout(time.Duration(c.Auth.RefreshTimeoutSeconds)*time.Second))
	}
	rt, err := authtransport.New(transportOpts...)
	if err != nil {
		return nil, err
	}
	c.cachedAuthRT = rt
	return rt, nil
}

// AuthStore exposes the token store used by the auth transport.
func (c *ClientOptions) AuthStore() store.Store {
	if c.cachedAuthRT == nil {
		return nil
	}
	return c.cachedAuthRT.Store()
}

func (c *ClientAuth) tokenStore() (store.Store, error) {
	if c.Store != nil {
		return c.Store, nil
	}
	switch c.StoreType {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "file":
		if c.StoreURL == "" {
			return nil, fmt.Errorf("store URL is required for file store")
		}
		return store.NewFileStore(c.StoreURL), nil
	case "secure":
		if c.StoreURL == "" {
			return nil, fmt.Errorf("store URL is required for secure store")
		}
		return store.NewSecureStore(c.StoreURL, c.EncryptionKey), nil
	default:
		return nil, fmt.Errorf("unsupported token store: %v", c.StoreType)
	}
}
