// Package footer renders the page footer: network and project info, version
// links, and the social and custom link groups.
package footer

import (
	"context"
	_ "embed"

	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/frontserver/components/footerlink"
	"github.com/ethda/chainfront/frontserver/components/network"
	"github.com/ethda/chainfront/frontserver/render"
	"github.com/ethda/chainfront/query"
	ua "github.com/mileusna/useragent"
)

var (
	//go:embed footer.html
	footerHTML string
	//go:embed project.html
	projectHTML string
	//go:embed footer.css
	footerCSS string
)

func init() {
	render.RegisterCSS(footerCSS)
}

var Component = render.Component{
	Template: footerHTML,
	Components: map[string]render.Component{
		"footer-project": {Template: projectHTML},
		"footerlink":     footerlink.Component,
		"network":        network.Component,
	},
}

// MaxLinksColumns is the maximum number of custom link groups shown next to the
// social group.
const MaxLinksColumns = 4

const (
	BackendVersionKey = "config_backend_version"
	LinksKey          = "footer-links"
)

// RefreshPath is the path of the footer fragment.
const RefreshPath = "/fragments/footer"

// API is the backend the footer reads from.
type API interface {
	network.StatusFetcher
	BackendVersion(ctx context.Context) (chainfront.BackendVersion, error)
	FooterLinks(ctx context.Context, url string) ([]chainfront.LinkGroup, error)
}

type Footer struct {
	cfg   Config
	net   network.Config
	api   API
	cache *query.Cache
}

// New creates a new footer. Both configs must already be validated.
func New(cfg Config, net network.Config, api API, cache *query.Cache) *Footer {
	return &Footer{cfg, net, api, cache}
}

// Group is a rendered link group.
type Group struct {
	Title   string
	Links   []footerlink.Item
	Loading bool
}

// View is the data of the footer template.
type View struct {
	HasCustomLinks bool
	Loading        bool
	RefreshURL     string

	ColNum      int
	Groups      []Group
	SocialLinks []footerlink.Item

	Network         network.View
	Project         Project
	FrontendVersion *chainfront.VersionLink
	BackendVersion  *chainfront.VersionLink
}

// IsFullGrid returns true if every link column is in use.
func (v View) IsFullGrid() bool {
	return v.ColNum == MaxLinksColumns+1
}

// ColumnCount returns the number of link columns: the social group plus up to
// MaxLinksColumns custom groups. Only the social group is shown while the
// custom links are loading.
func ColumnCount(isPlaceholder bool, n int) int {
	if isPlaceholder {
		return 1
	}

	if n > MaxLinksColumns {
		n = MaxLinksColumns
	}

	return n + 1
}

// VisibleGroups returns the social group followed by the fetched groups,
// capped at colNum groups.
func VisibleGroups(social chainfront.LinkGroup, fetched []chainfront.LinkGroup, colNum int) []chainfront.LinkGroup {
	var groups = make([]chainfront.LinkGroup, 0, len(fetched)+1)
	groups = append(groups, social)
	groups = append(groups, fetched...)

	if colNum < 0 {
		colNum = 0
	}
	if colNum < len(groups) {
		groups = groups[:colNum]
	}

	return groups
}

// Build runs the footer queries and assembles the view. Requests from crawlers
// wait longer for pending queries so that they never index placeholders.
func (f *Footer) Build(ctx context.Context, userAgent string) View {
	var wait = f.cfg.wait
	if ua.Parse(userAgent).Bot {
		wait = f.cfg.botWait
	}

	version := query.Get(ctx, f.cache, query.Options[chainfront.BackendVersion]{
		Key:     BackendVersionKey,
		Fetch:   f.api.BackendVersion,
		Enabled: true,
		Wait:    wait,
	})

	var links = f.cfg.Links

	custom := query.Get(ctx, f.cache, query.Options[[]chainfront.LinkGroup]{
		Key: LinksKey + " " + links,
		Fetch: func(ctx context.Context) ([]chainfront.LinkGroup, error) {
			return f.api.FooterLinks(ctx, links)
		},
		Enabled:     links != "",
		StaleTime:   f.cfg.linksStaleTime,
		Wait:        wait,
		Placeholder: []chainfront.LinkGroup{},
	})

	var view = View{
		HasCustomLinks: links != "",
		Network:        network.Build(ctx, f.cache, f.api, f.net, wait),
		Project:        f.cfg.Project,
	}

	social := f.cfg.Social()
	view.SocialLinks = footerlink.Items(social.Links, false)

	if view.HasCustomLinks {
		view.Loading = custom.IsPlaceholderData
		view.ColNum = ColumnCount(view.Loading, len(custom.Data))

		for _, group := range VisibleGroups(social, custom.Data, view.ColNum) {
			view.Groups = append(view.Groups, Group{
				Title:   group.Title,
				Links:   footerlink.Items(group.Links, view.Loading),
				Loading: view.Loading,
			})
		}
	}

	if link, ok := chainfront.BackendVersionLink(f.cfg.BackendRepo, version.Data.BackendVersion); ok {
		view.BackendVersion = &link
	}

	if link, ok := chainfront.FrontendVersionLink(
		f.cfg.FrontendRepo, f.cfg.FrontendVersion, f.cfg.FrontendCommit); ok {

		view.FrontendVersion = &link
	}

	indexingLoading := view.Network.Indexing != nil && view.Network.Indexing.Loading
	if view.Loading || version.IsPlaceholderData || indexingLoading {
		view.RefreshURL = RefreshPath
	}

	return view
}
