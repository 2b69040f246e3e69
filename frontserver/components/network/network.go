// Package network renders the network info block of the footer: the internal
// transactions indexing progress and the button adding the network to a
// browser wallet.
package network

import (
	"context"
	_ "embed"
	"math"
	"strconv"
	"time"

	"github.com/diamondburned/duration"
	"github.com/dustin/go-humanize"
	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/frontserver/render"
	"github.com/ethda/chainfront/query"
	"github.com/pkg/errors"
)

var (
	//go:embed network.html
	networkHTML string
	//go:embed network.css
	networkCSS string
)

func init() {
	render.RegisterCSS(networkCSS)
}

var Component = render.Component{
	Template: networkHTML,
}

// IndexingStatusKey is the query key of the indexing status.
const IndexingStatusKey = "homepage_indexing_status"

type Currency struct {
	Name     string `toml:"name"`
	Symbol   string `toml:"symbol"`
	Decimals int    `toml:"decimals"`
}

type Config struct {
	Name     string   `toml:"name"`
	ChainID  int64    `toml:"chainID"`
	RPCURL   string   `toml:"rpcURL"`
	Currency Currency `toml:"currency"`

	HideIntTxsIndexing bool   `toml:"hideIntTxsIndexing"`
	IndexingStaleTime  string `toml:"indexingStaleTime"`

	indexingStaleTime time.Duration
}

func NewConfig() Config {
	return Config{
		Currency: Currency{
			Name:     "Ether",
			Symbol:   "ETH",
			Decimals: 18,
		},
		IndexingStaleTime: "1m",
	}
}

func (c *Config) Validate() error {
	if c.RPCURL != "" {
		if err := chainfront.ValidateLinkURL(c.RPCURL); err != nil {
			return errors.Wrap(err, "invalid `rpcURL'")
		}
	}

	if c.ChainID < 0 {
		return errors.New("`chainID' must not be negative")
	}

	d, err := duration.ParseDuration(c.IndexingStaleTime)
	if err != nil {
		return errors.Wrap(err, "invalid `indexingStaleTime'")
	}
	c.indexingStaleTime = time.Duration(d)

	return nil
}

// StatusFetcher fetches the indexing status from the backend.
type StatusFetcher interface {
	IndexingStatus(ctx context.Context) (chainfront.IndexingStatus, error)
}

// View is the data of the network template.
type View struct {
	Indexing *Indexing
	Wallet   *Wallet
}

// IsEmpty returns true if there is nothing to render.
func (v View) IsEmpty() bool {
	return v.Indexing == nil && v.Wallet == nil
}

// Indexing is the internal transactions indexing progress.
type Indexing struct {
	Percent string
	Loading bool
}

// Wallet holds the parameters of wallet_addEthereumChain.
type Wallet struct {
	ChainID  string
	Name     string
	RPCURL   string
	Currency Currency
}

// Build queries the indexing status and assembles the view. It never blocks
// longer than wait.
func Build(ctx context.Context, cache *query.Cache, api StatusFetcher, cfg Config, wait time.Duration) View {
	var view View

	if !cfg.HideIntTxsIndexing {
		r := query.Get(ctx, cache, query.Options[chainfront.IndexingStatus]{
			Key:       IndexingStatusKey,
			Fetch:     api.IndexingStatus,
			Enabled:   true,
			StaleTime: cfg.indexingStaleTime,
			Wait:      wait,
		})

		view.Indexing = indexing(r)
	}

	view.Wallet = wallet(cfg)

	return view
}

func indexing(r query.Result[chainfront.IndexingStatus]) *Indexing {
	switch {
	case r.IsPlaceholderData:
		return &Indexing{Loading: true}
	case r.Status == query.StatusError:
		return nil
	case r.Data.FinishedIndexing:
		return nil
	}

	return &Indexing{Percent: FormatRatio(r.Data.IndexedInternalTxsRatio)}
}

func wallet(cfg Config) *Wallet {
	if cfg.ChainID == 0 || cfg.RPCURL == "" {
		return nil
	}

	name := cfg.Name
	if name == "" {
		name = "Chain " + strconv.FormatInt(cfg.ChainID, 10)
	}

	return &Wallet{
		ChainID:  "0x" + strconv.FormatInt(cfg.ChainID, 16),
		Name:     name,
		RPCURL:   cfg.RPCURL,
		Currency: cfg.Currency,
	}
}

// FormatRatio formats a decimal ratio string as a percentage with at most two
// decimals, rounding down so that unfinished indexing never shows 100%.
func FormatRatio(ratio string) string {
	f, err := strconv.ParseFloat(ratio, 64)
	if err != nil || math.IsNaN(f) {
		f = 0
	}

	f = math.Max(0, math.Min(1, f))

	// The epsilon absorbs binary representation error, e.g. 0.5012*10000 being
	// slightly under 5012.
	return humanize.Ftoa(math.Floor(f*10000+1e-6)/100) + "%"
}
