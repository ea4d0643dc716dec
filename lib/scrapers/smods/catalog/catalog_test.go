package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"modfetch/lib/scrapers/smods/core"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return NewCatalog(time.Time{}, DefaultSource, []Entry{
		{AppId: 244450, Slug: "men-of-war-assault-squad-2", Game: "Men of War: Assault Squad 2", Aliases: []string{"Men of War: Assault Squad 2", "men of war assault squad 2", "men-of-war-assault-squad-2"}},
		{AppId: 1, Slug: "alpha-mod", Game: "Alpha Mod", Aliases: []string{"alpha", "阿尔法"}},
		{AppId: 2, Slug: "beta", Game: "Beta Collection", Aliases: []string{"beta collection", "gamma alpha-mod extras"}},
		{AppId: 231430, Slug: "company-of-heroes-2", Game: "Company of Heroes 2 英雄连2", Aliases: []string{"Company of Heroes 2", "英雄连"}},
	})
}

func TestNewCatalogOrdersAndDedupes(t *testing.T) {
	c := NewCatalog(time.Time{}, "", []Entry{
		{AppId: 30, Game: "third"},
		{AppId: 10, Game: "first"},
		{AppId: 30, Game: "third again"},
		{AppId: 20, Game: "second"},
	})
	var names []string
	for _, e := range c.Entries {
		names = append(names, e.Game)
	}
	require.Equal(t, []string{"first", "second", "third"}, names)
}

func TestResolveAliasTier(t *testing.T) {
	e, err := Resolve(testCatalog(), "阿尔法")
	require.NoError(t, err)
	require.Equal(t, 1, e.AppId)
	require.Equal(t, "alpha-mod", e.Slug)
}

func TestResolveSlugBeatsAliasSubstring(t *testing.T) {
	// "alpha-mod" is also a substring of entry 2's alias, the slug tier wins
	// even though entry 2 would be reached first by a substring scan.
	c := NewCatalog(time.Time{}, "", []Entry{
		{AppId: 2, Slug: "beta", Game: "Beta Collection", Aliases: []string{"gamma alpha-mod extras"}},
		{AppId: 5, Slug: "alpha-mod", Game: "Alpha Mod", Aliases: []string{"alpha"}},
	})
	e, err := Resolve(c, "alpha-mod")
	require.NoError(t, err)
	require.Equal(t, 5, e.AppId)
}

func TestResolveTiers(t *testing.T) {
	testCases := []struct {
		input  string
		expect int
	}{
		{input: "ALPHA-MOD", expect: 1},
		{input: "beta collection", expect: 2},
		{input: "Men of War Assault Squad 2", expect: 244450},
		{input: "heroes", expect: 231430},
		{input: "  英雄连 ", expect: 231430},
		{input: "assault squad", expect: 244450},
	}
	for _, test := range testCases {
		e, err := Resolve(testCatalog(), test.input)
		require.NoError(t, err, test.input)
		require.Equal(t, test.expect, e.AppId, test.input)
	}
}

func TestResolveNumeric(t *testing.T) {
	c := testCatalog()

	e, err := Resolve(c, "231430")
	require.NoError(t, err)
	require.Equal(t, "company-of-heroes-2", e.Slug)

	for _, input := range []string{"999999", " 42 ", "0"} {
		e, err := Resolve(c, input)
		require.NoError(t, err, input)
		require.Equal(t, PlaceholderName, e.Game)
		require.Empty(t, e.Slug)
		require.True(t, e.IsPlaceholder())
	}

	e, err = Resolve(c, "２３１４３０")
	require.NoError(t, err)
	require.Equal(t, 231430, e.AppId)
	require.Equal(t, "company-of-heroes-2", e.Slug)

	e, err = Resolve(c, "１２３")
	require.NoError(t, err)
	require.Equal(t, 123, e.AppId)
	require.True(t, e.IsPlaceholder())

	e, err = Resolve(c, "١٢٣")
	require.NoError(t, err)
	require.Equal(t, 123, e.AppId)

	_, err = Resolve(c, "99999999999999999999")
	require.ErrorIs(t, err, ErrAppIdRange)
	var resErr *ResolutionError
	require.False(t, errors.As(err, &resErr))
}

func TestResolveFailure(t *testing.T) {
	_, err := Resolve(testCatalog(), "Company of Heroez")
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	require.Equal(t, "Company of Heroez", resErr.Input)
	require.Equal(t, "Company of Heroes 2 英雄连2", resErr.Suggestion)
	require.Contains(t, err.Error(), "games list")

	_, err = Resolve(testCatalog(), "   ")
	require.True(t, errors.As(err, &resErr))

	_, err = Resolve(testCatalog(), "!!!")
	require.True(t, errors.As(err, &resErr))
}

func TestFilter(t *testing.T) {
	c := testCatalog()

	ids := func(entries []Entry) []int {
		var out []int
		for _, e := range entries {
			out = append(out, e.AppId)
		}
		return out
	}

	require.Equal(t, []int{231430}, ids(c.Filter("英雄")))
	require.Equal(t, []int{1}, ids(c.Filter("阿尔")))
	require.Equal(t, []int{244450}, ids(c.Filter("assault")))
	require.Equal(t, []int{1, 2}, ids(c.Filter("ALPHA")))
	require.Len(t, c.Filter(""), 4)
	require.Empty(t, c.Filter("zzz"))
}

const landingPage = `
<div class="game-tile-wrapper">
	<a class="game-hover" href="https://catalogue.smods.ru/game/company-of-heroes-2">
		<img src="x.jpg">
	</a>
	<h2 class="game-title">Company of Heroes 2 <span>英雄连2</span></h2>
	<a class="game-buy-btn" href="https://store.steampowered.com/app/231430/">Buy</a>
</div>
<div class="game-tile-wrapper">
	<a class="game-hover" href="https://catalogue.smods.ru/game/men-of-war">x</a>
	<h2 class="game-title">Men of War &amp; More</h2>
	<a class="game-buy-btn" href="https://store.steampowered.com/app/7830">Buy</a>
</div>
<div class="game-tile-wrapper">
	<a class="game-hover" href="https://catalogue.smods.ru/game/coh2-duplicate">x</a>
	<h2 class="game-title">Duplicate</h2>
	<a class="game-buy-btn" href="https://store.steampowered.com/app/231430">Buy</a>
</div>
`

func TestParseTiles(t *testing.T) {
	entries := ParseTiles(landingPage)
	require.Len(t, entries, 3)
	require.Equal(t, "Company of Heroes 2 英雄连2", entries[0].Game)
	require.Equal(t, "company-of-heroes-2", entries[0].Slug)
	require.Equal(t, 231430, entries[0].AppId)
	require.Equal(t, "Men of War & More", entries[1].Game)
	require.Equal(t, 7830, entries[1].AppId)
	require.Contains(t, entries[1].Aliases, "men of war")
}

func TestParseTilesKeepsTilesApart(t *testing.T) {
	page := `
<div class="game-tile-wrapper">
	<a class="game-hover" href="//catalogue.smods.ru/game/%E7%BA%A2-alert/">x</a>
	<h2 class="game-title">No store link</h2>
</div>
<div class="game-tile-wrapper">
	<a class="game-hover" href="https://catalogue.smods.ru/game/arma-3?ref=tile">x</a>
	<h2 class="game-title">
		Arma 3
	</h2>
	<a class="game-buy-btn" href="https://store.steampowered.com/app/107410/Arma_3/">Buy</a>
</div>
<div class="game-tile-wrapper">
	<h2 class="game-title">No game link</h2>
	<a class="game-buy-btn" href="https://store.steampowered.com/app/5">Buy</a>
</div>`

	entries := ParseTiles(page)
	require.Len(t, entries, 1)
	require.Equal(t, 107410, entries[0].AppId)
	require.Equal(t, "arma-3", entries[0].Slug)
	require.Equal(t, "Arma 3", entries[0].Game)
}

func TestRefreshAndStore(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, landingPage)
	}))
	defer srv.Close()

	session, err := core.NewSession(core.SessionOptions{})
	require.NoError(t, err)

	store := Store{
		Path:    filepath.Join(t.TempDir(), "data", "games-cache.json"),
		Source:  srv.URL + "/",
		Session: session,
	}

	c, err := store.Get(context.Background(), false)
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())
	require.Len(t, c.Entries, 2)
	require.Equal(t, 7830, c.Entries[0].AppId)
	// the first tile for a repeated id is kept.
	require.Equal(t, "company-of-heroes-2", c.Entries[1].Slug)

	cached, err := store.Get(context.Background(), false)
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())
	require.Empty(t, cmp.Diff(c.Entries, cached.Entries))
	require.Equal(t, c.Source, cached.Source)

	_, err = store.Get(context.Background(), true)
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
}

func TestRefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	session, err := core.NewSession(core.SessionOptions{})
	require.NoError(t, err)

	_, err = Refresh(context.Background(), session, srv.URL)
	require.ErrorIs(t, err, ErrCatalogUnavailable)

	srv.Close()
	_, err = Refresh(context.Background(), session, srv.URL)
	require.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, ok := Load(filepath.Join(dir, "missing.json"))
	require.False(t, ok)

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{"generated_at": `), 0644))
	_, ok = Load(malformed)
	require.False(t, ok)

	noGames := filepath.Join(dir, "nogames.json")
	require.NoError(t, os.WriteFile(noGames, []byte(`{"generated_at": "2024-01-02T03:04:05", "count": 0}`), 0644))
	_, ok = Load(noGames)
	require.False(t, ok)

	legacy := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`{
		"generated_at": "2024-01-02T03:04:05",
		"source": "https://catalogue.smods.ru/",
		"count": 2,
		"games": [
			{"AppId": 9, "Slug": "b", "Game": "B", "Aliases": ["B"]},
			{"AppId": 3, "Slug": "a", "Game": "A", "Aliases": ["A"]}
		]
	}`), 0644))
	c, ok := Load(legacy)
	require.True(t, ok)
	require.Equal(t, 2024, c.GeneratedAt.Year())
	require.Equal(t, 3, c.Entries[0].AppId)
}

func TestSaveKeepsUnicode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games-cache.json")
	c := NewCatalog(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), DefaultSource, []Entry{
		{AppId: 1, Slug: "a&b", Game: "阿尔法 <A&B>", Aliases: []string{"阿尔法"}},
	})
	require.NoError(t, Save(path, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"Game": "阿尔法 <A&B>"`)
	require.Contains(t, string(data), `"count": 1`)

	loaded, ok := Load(path)
	require.True(t, ok)
	require.True(t, c.GeneratedAt.Equal(loaded.GeneratedAt))
	require.Equal(t, c.Entries, loaded.Entries)
}
