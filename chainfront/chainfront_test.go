package chainfront

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestParseLinkGroups(t *testing.T) {
	const input = `[
		{
			"title": "Company",
			"links": [
				{"text": "Website", "url": "https://ethda.io", "icon": "globe"},
				{"text": "Docs", "url": "https://docs.ethda.io", "iconSize": "4"}
			]
		},
		{"title": "Empty", "links": []}
	]`

	groups, err := ParseLinkGroups(strings.NewReader(input))
	if err != nil {
		t.Fatal("Failed to parse:", err)
	}

	expect := []LinkGroup{
		{
			Title: "Company",
			Links: []LinkItem{
				{Text: "Website", URL: "https://ethda.io", Icon: IconNamed("globe")},
				{Text: "Docs", URL: "https://docs.ethda.io", IconSize: "4"},
			},
		},
		{Title: "Empty", Links: []LinkItem{}},
	}

	if eq := deep.Equal(groups, expect); eq != nil {
		t.Fatal("Groups mismatch:", eq)
	}
}

func TestParseLinkGroupsInvalid(t *testing.T) {
	var tests = map[string]string{
		"NotArray":    `{"title": "x"}`,
		"NoTitle":     `[{"title": " ", "links": []}]`,
		"NoURL":       `[{"title": "x", "links": [{"text": "y"}]}]`,
		"BadScheme":   `[{"title": "x", "links": [{"url": "javascript:alert(1)"}]}]`,
		"RelativeURL": `[{"title": "x", "links": [{"url": "/about"}]}]`,
		"IconObject":  `[{"title": "x", "links": [{"url": "https://a.b", "icon": {}}]}]`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseLinkGroups(strings.NewReader(input)); err == nil {
				t.Fatal("Unexpected nil error")
			}
		})
	}

	t.Run("InvalidLinksSentinel", func(t *testing.T) {
		_, err := ParseLinkGroups(strings.NewReader(tests["BadScheme"]))
		if !errors.Is(err, ErrInvalidLinks) {
			t.Fatal("Error is not ErrInvalidLinks:", err)
		}
	})
}

func TestIcon(t *testing.T) {
	if !(Icon{}).IsZero() {
		t.Fatal("Zero icon is not zero")
	}

	if IconNamed("globe").IsInline() {
		t.Fatal("Named icon is inline")
	}

	if !InlineIcon("<svg></svg>").IsInline() {
		t.Fatal("Inline icon is not inline")
	}
}

func TestFrontendVersionLink(t *testing.T) {
	type test struct {
		version string
		commit  string
		link    VersionLink
		ok      bool
	}

	var tests = map[string]test{
		"Version": {
			version: "v1.2.3",
			commit:  "abcdef",
			link: VersionLink{
				Text: "v1.2.3",
				URL:  "https://github.com/blockscout/frontend/tree/v1.2.3",
			},
			ok: true,
		},
		"Commit": {
			commit: "abcdef",
			link: VersionLink{
				Text: "abcdef",
				URL:  "https://github.com/blockscout/frontend/commit/abcdef",
			},
			ok: true,
		},
		"None": {},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			link, ok := FrontendVersionLink(DefaultFrontendRepo+"/", test.version, test.commit)
			if ok != test.ok {
				t.Fatalf("Unexpected ok %v", ok)
			}
			if eq := deep.Equal(link, test.link); eq != nil {
				t.Fatal("Link mismatch:", eq)
			}
		})
	}
}

func TestBackendVersionLink(t *testing.T) {
	var tests = map[string]struct {
		version string
		url     string
		ok      bool
	}{
		"Commit": {
			version: "v5.2.0-beta.+commit.1ce1a9a6",
			url:     "https://github.com/blockscout/blockscout/commit/1ce1a9a6",
			ok:      true,
		},
		"Tag": {
			version: "v5.2.0-beta",
			url:     "https://github.com/blockscout/blockscout/tree/v5.2.0-beta",
			ok:      true,
		},
		"Empty": {},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			link, ok := BackendVersionLink(DefaultBackendRepo, test.version)
			if ok != test.ok {
				t.Fatalf("Unexpected ok %v", ok)
			}
			if link.URL != test.url {
				t.Fatalf("Unexpected URL %q", link.URL)
			}
			if ok && link.Text != test.version {
				t.Fatalf("Unexpected text %q", link.Text)
			}
		})
	}
}
