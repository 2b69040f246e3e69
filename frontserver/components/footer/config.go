package footer

import (
	"time"

	"github.com/diamondburned/duration"
	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/frontserver/static"
	"github.com/pkg/errors"
)

// SocialLink is a configured social link. Icon names a symbol in the sprite
// sheet.
type SocialLink struct {
	URL      string `toml:"url"`
	Icon     string `toml:"icon"`
	IconSize string `toml:"iconSize"`
	Text     string `toml:"text"`
}

type Project struct {
	Name        string `toml:"name"`
	URL         string `toml:"url"`
	Description string `toml:"description"`
}

type Config struct {
	// Links is the URL of the custom links file. Empty disables custom links.
	Links string `toml:"links"`

	FrontendVersion string `toml:"frontendVersion"`
	FrontendCommit  string `toml:"frontendCommit"`
	FrontendRepo    string `toml:"frontendRepo"`
	BackendRepo     string `toml:"backendRepo"`

	SocialTitle string       `toml:"socialTitle"`
	SocialLinks []SocialLink `toml:"socialLinks"`
	Project     Project      `toml:"project"`

	LinksStaleTime string `toml:"linksStaleTime"`
	Wait           string `toml:"wait"`
	BotWait        string `toml:"botWait"`

	linksStaleTime time.Duration
	wait           time.Duration
	botWait        time.Duration
}

func NewConfig() Config {
	return Config{
		FrontendRepo: chainfront.DefaultFrontendRepo,
		BackendRepo:  chainfront.DefaultBackendRepo,
		SocialTitle:  "Blockscout",
		Project: Project{
			Name:        "ethda.io",
			URL:         "https://ethda.io/",
			Description: "EthDA is a scalable Ethereum layer2 Data Availability solution.",
		},
		Wait:    "150ms",
		BotWait: "5s",
	}
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	d, err := duration.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid `%s'", name)
	}

	return time.Duration(d), nil
}

func (c *Config) Validate() error {
	if c.Links != "" {
		if err := chainfront.ValidateLinkURL(c.Links); err != nil {
			return errors.Wrap(err, "invalid `links'")
		}
	}

	for i, link := range c.SocialLinks {
		if err := chainfront.ValidateLinkURL(link.URL); err != nil {
			return errors.Wrapf(err, "invalid social link %d", i)
		}
	}

	var err error

	if c.linksStaleTime, err = parseDuration("linksStaleTime", c.LinksStaleTime); err != nil {
		return err
	}
	if c.wait, err = parseDuration("wait", c.Wait); err != nil {
		return err
	}
	if c.botWait, err = parseDuration("botWait", c.BotWait); err != nil {
		return err
	}

	return nil
}

// Social returns the social link group. The bundled links are used if none are
// configured.
func (c *Config) Social() chainfront.LinkGroup {
	if len(c.SocialLinks) == 0 {
		return chainfront.LinkGroup{Title: c.SocialTitle, Links: DefaultSocialLinks()}
	}

	var links = make([]chainfront.LinkItem, len(c.SocialLinks))
	for i, link := range c.SocialLinks {
		links[i] = chainfront.LinkItem{
			URL:      link.URL,
			IconSize: link.IconSize,
			Text:     link.Text,
		}
		if link.Icon != "" {
			links[i].Icon = chainfront.IconNamed(link.Icon)
		}
	}

	return chainfront.LinkGroup{Title: c.SocialTitle, Links: links}
}

// DefaultSocialLinks returns the bundled social links, drawn with inline icons.
func DefaultSocialLinks() []chainfront.LinkItem {
	return []chainfront.LinkItem{
		{URL: "https://t.me/CrustNetwork", Icon: chainfront.InlineIcon(static.Social("telegram"))},
		{URL: "https://crustnetwork.medium.com/", Icon: chainfront.InlineIcon(static.Social("medium"))},
		{URL: "https://twitter.com/CrustNetwork", Icon: chainfront.InlineIcon(static.Social("twitter"))},
		{URL: "https://github.com/crustio", Icon: chainfront.InlineIcon(static.Social("github"))},
		{URL: "https://discord.com/invite/Jbw2PAUSCR", Icon: chainfront.InlineIcon(static.Social("discord"))},
	}
}
