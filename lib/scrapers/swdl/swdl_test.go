package swdl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"modfetch/lib/scrapers/smods/core"

	"github.com/stretchr/testify/require"
)

type request struct {
	path    string
	referer string
	form    url.Values
}

func TestResolveThroughApi(t *testing.T) {
	requests := make(chan request, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		requests <- request{path: r.URL.Path, referer: r.Header.Get("Referer"), form: r.PostForm}
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<script>$.ajax({url: "online/steamonline.php", data: { item: 555, app: 244450 }})</script>`)
		case "/online/steamonline.php":
			fmt.Fprint(w, `<a href='//cdn.example.net/555.zip'>Download</a>`)
		}
	}))
	defer srv.Close()

	session, err := core.NewSession(core.SessionOptions{})
	require.NoError(t, err)
	client := Client{Session: session, Home: srv.URL}

	itemUrl := "https://steamcommunity.com/sharedfiles/filedetails/?id=555"
	direct, ok, err := client.Resolve(context.Background(), itemUrl, "555", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "https://cdn.example.net/555.zip", direct)

	first := <-requests
	require.Equal(t, "/", first.path)
	require.Equal(t, itemUrl, first.referer)
	require.Equal(t, itemUrl, first.form.Get("url"))

	second := <-requests
	require.Equal(t, "/online/steamonline.php", second.path)
	require.Equal(t, srv.URL+"/download/view/555", second.referer)
	require.Equal(t, "555", second.form.Get("item"))
	require.Equal(t, "244450", second.form.Get("app"))
}

func TestParseItemApp(t *testing.T) {
	item, app := ParseItemApp(`data: {item: 7, app: 8}`, "1", 2)
	require.Equal(t, "7", item)
	require.Equal(t, 8, app)

	item, app = ParseItemApp(`nothing here`, "1", 2)
	require.Equal(t, "1", item)
	require.Equal(t, 2, app)
}
