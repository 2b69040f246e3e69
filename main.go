package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/c2h5oh/datasize"
	"github.com/diamondburned/duration"
	"github.com/dustin/go-humanize"
	"github.com/ethda/chainfront/client"
	"github.com/ethda/chainfront/frontserver"
	"github.com/ethda/chainfront/frontserver/components/icon"
	"github.com/ethda/chainfront/query"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"

	toml "github.com/pelletier/go-toml"
)

var (
	configGlob = "./config*.toml"
	noStore    = false
)

func stderrlnf(f string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", v...)
}

type ClientConfig struct {
	Timeout         string `toml:"timeout"`
	MaxResponseSize string `toml:"maxResponseSize"`
	UserAgent       string `toml:"userAgent"`

	timeout         time.Duration
	maxResponseSize datasize.ByteSize
}

type QueryConfig struct {
	Retry         int    `toml:"retry"`
	FetchTimeout  string `toml:"fetchTimeout"`
	ErrorCooldown string `toml:"errorCooldown"`

	fetchTimeout  time.Duration
	errorCooldown time.Duration
}

type Config struct {
	ListenAddress  string `toml:"listenAddress"`
	BackendAddress string `toml:"backendAddress"`

	Client ClientConfig      `toml:"client"`
	Query  QueryConfig       `toml:"query"`
	Store  query.StoreConfig `toml:"store"`

	frontserver.FrontConfig
}

func NewConfig() Config {
	return Config{
		ListenAddress:  ":3000",
		BackendAddress: "http://localhost:4000",
		Client: ClientConfig{
			Timeout:         "30s",
			MaxResponseSize: client.DefaultMaxResponseSize.String(),
			UserAgent:       "chainfront",
		},
		Query: QueryConfig{
			Retry:         query.DefaultRetry,
			FetchTimeout:  "30s",
			ErrorCooldown: "10s",
		},
		Store:       query.NewStoreConfig(),
		FrontConfig: frontserver.NewConfig(),
	}
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := duration.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid `%s'", name)
	}
	return time.Duration(d), nil
}

func (c *Config) Validate() (err error) {
	if c.BackendAddress == "" {
		return errors.New("missing `backendAddress'")
	}

	if c.Client.timeout, err = parseDuration("client.timeout", c.Client.Timeout); err != nil {
		return err
	}

	if err := c.Client.maxResponseSize.UnmarshalText([]byte(c.Client.MaxResponseSize)); err != nil {
		return errors.Wrap(err, "invalid `client.maxResponseSize'")
	}

	if c.Query.Retry < 0 {
		return errors.New("`query.retry' must not be negative")
	}

	if c.Query.fetchTimeout, err = parseDuration("query.fetchTimeout", c.Query.FetchTimeout); err != nil {
		return err
	}

	if c.Query.errorCooldown, err = parseDuration("query.errorCooldown", c.Query.ErrorCooldown); err != nil {
		return err
	}

	if err := c.Store.Validate(); err != nil {
		return errors.Wrap(err, "invalid store")
	}

	return c.FrontConfig.Validate()
}

func init() {
	pflag.StringVarP(
		&configGlob, "config", "c", configGlob,
		"Path to config file with glob support for fallback",
	)

	pflag.BoolVarP(
		&noStore, "no-store", "n", noStore,
		"Keep query results in memory only",
	)

	pflag.Usage = func() {
		stderrlnf("Usage: %s [subcommand] [flags...]", filepath.Base(os.Args[0]))
		stderrlnf("Subcommands:")
		stderrlnf("  check-links    Fetch and validate the custom footer links")
		stderrlnf("  serve          Run the HTTP server")
		stderrlnf("Flags:")
		pflag.PrintDefaults()
	}
}

func main() {
	pflag.Parse()

	cfg, err := loadConfig(configGlob)
	if err != nil {
		log.Fatalln(err)
	}

	if cfg.Footer.FrontendCommit == "" {
		cfg.Footer.FrontendCommit = vcsRevision()
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalln("Invalid config:", err)
	}

	api, err := newAPI(cfg)
	if err != nil {
		log.Fatalln("Failed to create backend client:", err)
	}

	switch pflag.Arg(0) {
	case "check-links":
		if err := checkLinks(api, cfg.Footer.Links); err != nil {
			log.Fatalln(err)
		}

	case "serve":
		fallthrough
	default:
		serve(api, cfg)
	}
}

// loadConfig reads all config files matching the glob in order, so later files
// override earlier ones.
func loadConfig(glob string) (Config, error) {
	var cfg = NewConfig()

	d, err := filepath.Glob(glob)
	if err != nil {
		return cfg, errors.Wrap(err, "Failed to glob")
	}

	if len(d) == 0 {
		return cfg, errors.New("Glob returns no matches.")
	}

	for _, path := range d {
		f, err := ioutil.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "Failed to read globbed config file")
		}

		t, err := toml.LoadBytes(f)
		if err != nil {
			return cfg, errors.Wrapf(err, "Failed to load TOML from %s", path)
		}

		if err := t.Unmarshal(&cfg); err != nil {
			return cfg, errors.Wrapf(err, "Failed to unmarshal %s", path)
		}
	}

	return cfg, nil
}

// vcsRevision returns the commit the binary was built from, if known.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}

func newAPI(cfg Config) (*client.API, error) {
	c, err := client.NewClient(cfg.BackendAddress)
	if err != nil {
		return nil, err
	}

	c.Client.Timeout = cfg.Client.timeout
	c.SetUserAgent(cfg.Client.UserAgent)
	c.SetMaxResponseSize(cfg.Client.maxResponseSize)

	return client.NewAPIWithClient(c), nil
}

func newCache(cfg Config) *query.Cache {
	qcfg := query.NewConfig()
	qcfg.Retry = cfg.Query.Retry
	qcfg.FetchTimeout = cfg.Query.fetchTimeout
	qcfg.ErrorCooldown = cfg.Query.errorCooldown

	if noStore || cfg.Store.Path == "" {
		return query.NewCache(qcfg, nil)
	}

	s, err := query.NewDiskStore(cfg.Store)
	if err != nil {
		log.Fatalln("Failed to create query store:", err)
	}

	return query.NewCache(qcfg, s)
}

func checkLinks(api *client.API, url string) error {
	if url == "" {
		return errors.New("No custom links configured.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	groups, err := api.FooterLinks(ctx, url)
	if err != nil {
		return err
	}

	var nlinks int

	for _, group := range groups {
		fmt.Println(group.Title)

		for _, link := range group.Links {
			nlinks++

			var note string
			if !link.Icon.IsZero() && !link.Icon.IsInline() && !icon.Has(link.Icon.Name) {
				note = " (unknown icon " + link.Icon.Name + ")"
			}

			fmt.Printf("  %s\t%s%s\n", link.Text, link.URL, note)
		}
	}

	fmt.Printf(
		"%s groups, %s links\n",
		humanize.Comma(int64(len(groups))), humanize.Comma(int64(nlinks)),
	)

	return nil
}

func serve(api *client.API, cfg Config) {
	cache := newCache(cfg)
	defer cache.Close()

	f, err := frontserver.New(api, cache, cfg.FrontConfig)
	if err != nil {
		log.Fatalln("Failed to create frontend:", err)
	}

	c := middleware.NewCompressor(5)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	mux := chi.NewMux()
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(c.Handler)
	mux.Mount("/", f)

	l, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Fatalln("Failed to listen:", err)
	}

	var server = http.Server{
		Handler: mux,
	}

	// Explicitly set up HTTP/2.
	err = http2.ConfigureServer(&server, &http2.Server{
		MaxHandlers:          4096,
		MaxConcurrentStreams: 1024,
	})

	if err != nil {
		log.Fatalln("Failed to configure HTTP/2 server:", err)
	}

	log.Println("Starting HTTP/2 listener at", l.Addr())

	go func() {
		if err := server.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Fatalln("Failed to start:", err)
		}
	}()

	// Handle SIGINT and gracefully close the server.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	// Give the server a 10 seconds timeout for shutting down.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalln("Failed to gracefully close the server:", err)
	}
}
