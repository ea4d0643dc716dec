package modsbase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		rule   string
		expect string
	}{
		{
			name:   "gateway double quoted",
			body:   `<a class="btn" href="https://dl3.modsbase.com/cgi-bin/dl.cgi/abc123/Alpha.zip">Download</a>`,
			rule:   "gateway-dq",
			expect: "https://dl3.modsbase.com/cgi-bin/dl.cgi/abc123/Alpha.zip",
		},
		{
			name:   "gateway single quoted d.cgi",
			body:   `<a href='//s1.modsbase.com/cgi-bin/d.cgi/xyz/file'>go</a>`,
			rule:   "gateway-sq",
			expect: "https://s1.modsbase.com/cgi-bin/d.cgi/xyz/file",
		},
		{
			name:   "zip with query",
			body:   `<A HREF="http://files.example.net/mods/alpha.ZIP?token=1">x</A>`,
			rule:   "zip-dq",
			expect: "http://files.example.net/mods/alpha.ZIP?token=1",
		},
		{
			name:   "zip single quoted",
			body:   `<a href='//files.example.net/beta.zip'>x</a>`,
			rule:   "zip-sq",
			expect: "https://files.example.net/beta.zip",
		},
		{
			name:   "script redirect",
			body:   `<script>setTimeout(function(){ window.open( "//cdn.example.net/get/77" ) }, 10)</script>`,
			rule:   "script-redirect",
			expect: "https://cdn.example.net/get/77",
		},
		{
			name:   "gateway preferred over earlier zip",
			body:   `<a href="https://h/a.zip">a</a><a href="https://h/cgi-bin/dl.cgi/1/a">b</a>`,
			rule:   "gateway-dq",
			expect: "https://h/cgi-bin/dl.cgi/1/a",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			link, rule, ok := ExtractDirect(test.body)
			require.True(t, ok)
			require.Equal(t, test.rule, rule)
			require.Equal(t, test.expect, link)
		})
	}
}

func TestTeaserRejected(t *testing.T) {
	body := `
		<a href="https://modsbase.com/abc/Alpha_Mod.zip.html">teaser</a>
		<a href="https://modsbase.com/abc/Alpha_Mod.zip">real</a>
	`
	link, rule, ok := ExtractDirect(body)
	require.True(t, ok)
	require.Equal(t, "zip-dq", rule)
	require.Equal(t, "https://modsbase.com/abc/Alpha_Mod.zip", link)
}

func TestTeaserRejectedFromScript(t *testing.T) {
	body := `
		<script>location.href("https://modsbase.com/abc/Alpha_Mod.zip.html")</script>
		<script>window.open('https://dl.example.net/real/1')</script>
	`
	link, _, ok := ExtractDirect(body)
	require.True(t, ok)
	require.Equal(t, "https://dl.example.net/real/1", link)
}

func TestOnlyTeaser(t *testing.T) {
	_, _, ok := ExtractDirect(`<a href="http://host/file.zip.html">teaser</a>`)
	require.False(t, ok)
}

func TestNormalizeCandidate(t *testing.T) {
	link, ok := NormalizeCandidate("//host/path/file.zip")
	require.True(t, ok)
	require.Equal(t, "https://host/path/file.zip", link)

	_, ok = NormalizeCandidate("//host/path/file.zip.html")
	require.False(t, ok)

	_, ok = NormalizeCandidate("  ")
	require.False(t, ok)
}

func TestResolveAction(t *testing.T) {
	page := "https://modsbase.com/abc123/Alpha_Mod.zip.html"
	origin := "https://modsbase.com"

	require.Equal(t, page, ResolveAction("", page, origin))
	require.Equal(t, "https://modsbase.com/", ResolveAction("/", page, origin))
	require.Equal(t, "https://other.net/post", ResolveAction("//other.net/post", page, origin))
	require.Equal(t, "https://modsbase.com/abc123/next", ResolveAction("next", page, origin))
	require.Equal(t, "http://x.net/y", ResolveAction("http://x.net/y", page, origin))
}
