// Package frontserver serves the server-rendered explorer pages and the
// fragments that refresh them.
package frontserver

import (
	"net/http"

	"github.com/ethda/chainfront/client"
	"github.com/ethda/chainfront/frontserver/components/footer"
	"github.com/ethda/chainfront/frontserver/components/icon"
	"github.com/ethda/chainfront/frontserver/components/network"
	"github.com/ethda/chainfront/frontserver/internal/limit"
	"github.com/ethda/chainfront/frontserver/pages/errorpage"
	"github.com/ethda/chainfront/frontserver/pages/fragments"
	"github.com/ethda/chainfront/frontserver/pages/home"
	"github.com/ethda/chainfront/frontserver/render"
	"github.com/ethda/chainfront/httperr"
	"github.com/ethda/chainfront/query"
	"github.com/pkg/errors"
)

type FrontConfig struct {
	render.Config
	Footer  footer.Config  `toml:"footer"`
	Network network.Config `toml:"network"`

	// FragmentRateLimit is the number of fragment requests allowed per second
	// from each client. Zero disables the limit.
	FragmentRateLimit float64 `toml:"fragmentRateLimit"`
}

func NewConfig() FrontConfig {
	return FrontConfig{
		Config:            render.NewConfig(),
		Footer:            footer.NewConfig(),
		Network:           network.NewConfig(),
		FragmentRateLimit: 5,
	}
}

func (c *FrontConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}

	if err := c.Footer.Validate(); err != nil {
		return errors.Wrap(err, "invalid footer")
	}

	if err := c.Network.Validate(); err != nil {
		return errors.Wrap(err, "invalid network")
	}

	if c.FragmentRateLimit < 0 {
		return errors.New("`fragmentRateLimit' must not be negative")
	}

	return nil
}

// New creates the frontend handler. The API is used to fetch everything the
// pages show, with results shared through the cache.
func New(api *client.API, cache *query.Cache, cfg FrontConfig) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ft := footer.New(cfg.Footer, cfg.Network, api, cache)

	r := render.NewMux(cfg.Config)
	r.SetErrorRenderer(errorpage.New(ft))
	r.Get("/", home.New(ft))
	r.Mount("/fragments", fragments.Mount(ft, limit.RateLimit(cfg.FragmentRateLimit)))
	r.Mux.Get(icon.SpriteHref, icon.SpriteHandler)
	r.NotFound(r.M(func(*render.Request) (render.Render, error) {
		return render.Empty, errNotFound
	}))

	return r, nil
}

var errNotFound = httperr.New(http.StatusNotFound, "page not found")
