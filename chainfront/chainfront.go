// Package chainfront contains the value types shared between the explorer
// front server and its backend API client.
package chainfront

import (
	"encoding/json"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Icon is either the name of a symbol in the shared sprite sheet or an inline
// SVG graphic. Name takes precedence if both are set.
type Icon struct {
	Name string
	SVG  template.HTML
}

// IconNamed returns a sprite icon.
func IconNamed(name string) Icon {
	return Icon{Name: name}
}

// InlineIcon returns an icon drawn from the given SVG markup.
func InlineIcon(svg string) Icon {
	return Icon{SVG: template.HTML(svg)}
}

func (i Icon) IsZero() bool {
	return i.Name == "" && i.SVG == ""
}

// IsInline returns true if the icon is an inline graphic instead of a sprite
// symbol.
func (i Icon) IsInline() bool {
	return i.Name == "" && i.SVG != ""
}

// MarshalJSON encodes only sprite names, since inline graphics never come from
// the custom links file.
func (i Icon) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Name)
}

func (i *Icon) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return errors.Wrap(err, "icon must be a sprite name")
	}
	*i = Icon{Name: name}
	return nil
}

// LinkItem is a single footer link row.
type LinkItem struct {
	URL      string `json:"url"                toml:"url"`
	Icon     Icon   `json:"icon,omitempty"     toml:"-"`
	IconSize string `json:"iconSize,omitempty" toml:"iconSize"`
	Text     string `json:"text,omitempty"     toml:"text"`
}

// LinkGroup is a titled column of footer links.
type LinkGroup struct {
	Title string     `json:"title"`
	Links []LinkItem `json:"links"`
}

// ErrInvalidLinks is returned when the custom links file has the right JSON
// shape but unusable content.
var ErrInvalidLinks = errors.New("invalid footer links")

// ParseLinkGroups decodes the custom links file, which is a JSON array of
// link groups.
func ParseLinkGroups(r io.Reader) ([]LinkGroup, error) {
	var groups []LinkGroup

	if err := json.NewDecoder(r).Decode(&groups); err != nil {
		return nil, errors.Wrap(err, "failed to decode footer links")
	}

	if err := ValidateLinkGroups(groups); err != nil {
		return nil, err
	}

	return groups, nil
}

// ValidateLinkGroups checks that every group has a title and every link has an
// absolute http(s) URL.
func ValidateLinkGroups(groups []LinkGroup) error {
	for i, group := range groups {
		if strings.TrimSpace(group.Title) == "" {
			return errors.Wrapf(ErrInvalidLinks, "group %d has no title", i)
		}

		for j, link := range group.Links {
			if err := ValidateLinkURL(link.URL); err != nil {
				return errors.Wrapf(err, "group %q link %d", group.Title, j)
			}
		}
	}

	return nil
}

// ValidateLinkURL returns an error if the given URL is not an absolute http or
// https URL.
func ValidateLinkURL(link string) error {
	if link == "" {
		return errors.Wrap(ErrInvalidLinks, "missing url")
	}

	u, err := url.Parse(link)
	if err != nil {
		return errors.Wrap(ErrInvalidLinks, err.Error())
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return errors.Wrapf(ErrInvalidLinks, "unsupported scheme in %q", link)
	}

	if u.Host == "" {
		return errors.Wrapf(ErrInvalidLinks, "missing host in %q", link)
	}

	return nil
}

// BackendVersion is the response of the backend version endpoint.
type BackendVersion struct {
	BackendVersion string `json:"backend_version"`
}

// IndexingStatus is the response of the indexing status endpoint. Ratios are
// decimal strings between 0 and 1.
type IndexingStatus struct {
	FinishedIndexingBlocks  bool   `json:"finished_indexing_blocks"`
	IndexedBlocksRatio      string `json:"indexed_blocks_ratio"`
	FinishedIndexing        bool   `json:"finished_indexing"`
	IndexedInternalTxsRatio string `json:"indexed_internal_transactions_ratio"`
}

// ErrResponse is the body the backend API sends along with error codes.
type ErrResponse struct {
	Message string `json:"message"`
}
