package client

import (
	"context"
	"io"
	"net/http"

	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/httperr"
)

// API is the read-only view of the explorer backend that the front server
// needs.
type API struct {
	Client *Client
}

// NewAPI creates a new API with the given backend host.
func NewAPI(host string) (*API, error) {
	c, err := NewClient(host)
	if err != nil {
		return nil, err
	}

	return NewAPIWithClient(c), nil
}

// NewAPIWithClient creates a new API with a client. Refer to NewAPI.
func NewAPIWithClient(c *Client) *API {
	return &API{
		Client: c,
	}
}

func (a *API) Endpoint(path string) string {
	return a.Client.Endpoint() + path
}

// BackendVersion fetches the version string of the backend. Failures are
// reported as 502 Bad Gateway; the upstream status stays in the chain.
func (a *API) BackendVersion(ctx context.Context) (v chainfront.BackendVersion, err error) {
	err = a.Client.Get(ctx, "/config/backend-version", &v, nil)
	return v, httperr.Wrap(err, http.StatusBadGateway, "Failed to get backend version")
}

func (a *API) IndexingStatus(ctx context.Context) (s chainfront.IndexingStatus, err error) {
	err = a.Client.Get(ctx, "/main-page/indexing-status", &s, nil)
	return s, httperr.Wrap(err, http.StatusBadGateway, "Failed to get indexing status")
}

// FooterLinks fetches and validates the custom footer links file at the given
// absolute URL.
func (a *API) FooterLinks(ctx context.Context, url string) ([]chainfront.LinkGroup, error) {
	var groups []chainfront.LinkGroup

	err := a.Client.GetURL(ctx, url, func(r io.Reader) (err error) {
		groups, err = chainfront.ParseLinkGroups(r)
		return
	})

	if err != nil {
		return nil, httperr.Wrapf(err, http.StatusBadGateway, "Failed to get footer links from %s", url)
	}

	return groups, nil
}
