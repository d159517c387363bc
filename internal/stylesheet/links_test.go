package stylesheet

import (
	"strings"
	"testing"
)

func TestFindLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tmpl      string
		wantHrefs []string
	}{
		{
			name:      "sass link",
			tmpl:      `<head><link rel="stylesheet" type="text/sass" href="sass/main.scss"></head>`,
			wantHrefs: []string{"sass/main.scss"},
		},
		{
			name:      "scss link self-closing, mixed case type",
			tmpl:      `<link type="Text/SCSS" href="a.scss" />`,
			wantHrefs: []string{"a.scss"},
		},
		{
			name:      "plain css links ignored",
			tmpl:      `<link rel="stylesheet" href="x.css"><link type="text/css" href="y.css">`,
			wantHrefs: nil,
		},
		{
			name:      "link text inside script ignored",
			tmpl:      `<script>var s = '<link type="text/sass" href="no.scss">';</script>`,
			wantHrefs: nil,
		},
		{
			name:      "two links in order",
			tmpl:      `<link type="text/sass" href="1.scss"><p>x</p><link type="text/scss" href="2.scss">`,
			wantHrefs: []string{"1.scss", "2.scss"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			links, err := FindLinks(tt.tmpl)
			if err != nil {
				t.Fatalf("FindLinks() error = %v", err)
			}
			if len(links) != len(tt.wantHrefs) {
				t.Fatalf("FindLinks() = %d links, want %d", len(links), len(tt.wantHrefs))
			}
			for i, l := range links {
				if l.Href != tt.wantHrefs[i] {
					t.Errorf("links[%d].Href = %q, want %q", i, l.Href, tt.wantHrefs[i])
				}
				raw := tt.tmpl[l.Start:l.End]
				if !strings.HasPrefix(raw, "<link") || !strings.HasSuffix(raw, ">") {
					t.Errorf("links[%d] span = %q, want the whole tag", i, raw)
				}
			}
		})
	}
}

func TestRewriteLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{
			name: "attributes keep order",
			tmpl: `<head>  <link rel="stylesheet" type="text/sass" href="sass/main.scss" media="all">  </head>`,
			want: `<head>  <link rel="stylesheet" type="text/css" href="../css/main.css" media="all">  </head>`,
		},
		{
			name: "self-closing preserved",
			tmpl: `<link href='sass/main.scss' type=text/sass />x`,
			want: `<link href="../css/main.css" type="text/css" />x`,
		},
		{
			name: "boolean attribute",
			tmpl: `<link type="text/sass" href="a.scss" disabled>`,
			want: `<link type="text/css" href="../css/main.css" disabled>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			links, err := FindLinks(tt.tmpl)
			if err != nil || len(links) != 1 {
				t.Fatalf("FindLinks() = %v, %v; want one link", links, err)
			}
			if got := RewriteLink(tt.tmpl, links[0], "../css/main.css"); got != tt.want {
				t.Errorf("RewriteLink() = %q, want %q", got, tt.want)
			}
		})
	}
}
