package steam

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

const browsePage = `
<div class="workshopItem">
	<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=111" class="ugc">
		<img src="preview.jpg">
	</a>
	<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=111"><div class="workshopItemTitle">Learn More</div></a>
	<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=222"><div class="workshopItemTitle">Utah Beach</div></a>
	<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=333&searchtext=omaha"><div class="workshopItemTitle">Omaha  Beach
	</div></a>
	<a href="https://steamcommunity.com/workshop/about/">About</a>
</div>
`

func TestFindFirstItem(t *testing.T) {
	queries := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		fmt.Fprint(w, browsePage)
	}))
	defer srv.Close()

	session, err := core.NewSession(core.SessionOptions{})
	require.NoError(t, err)
	workshop := Workshop{Session: session, Base: srv.URL}

	item, ok, err := workshop.FindFirstItem(context.Background(), 244450, "omaha")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "333", item.ItemId)
	require.Equal(t, "Omaha Beach", item.Title)
	require.Equal(t, 244450, item.AppId)
	require.Equal(t, srv.URL+"/sharedfiles/filedetails/?id=333", item.ItemUrl)

	query := <-queries
	require.Equal(t, "244450", query.Get("appid"))
	require.Equal(t, "omaha", query.Get("searchtext"))
	require.Equal(t, "readytouseitems", query.Get("section"))
}

func TestFindFirstItemNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=1">了解更多</a>`)
	}))
	defer srv.Close()

	session, err := core.NewSession(core.SessionOptions{})
	require.NoError(t, err)
	workshop := Workshop{Session: session, Base: srv.URL}

	_, ok, err := workshop.FindFirstItem(context.Background(), 1, "x")
	require.NoError(t, err)
	require.False(t, ok)
}
