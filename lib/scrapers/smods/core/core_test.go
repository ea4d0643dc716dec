package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionKeepsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/landing":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			w.Write([]byte("landing"))
		case "/form":
			cookie, err := r.Cookie("sid")
			if err != nil || cookie.Value != "abc" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			r.ParseForm()
			w.Write([]byte(r.Header.Get("Referer") + "|" + r.PostForm.Get("op")))
		}
	}))
	defer srv.Close()

	session, err := NewSession(SessionOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	body, err := session.Get(ctx, srv.URL+"/landing", "")
	require.NoError(t, err)
	require.Equal(t, "landing", body)

	body, err = session.PostForm(ctx, srv.URL+"/form", "https://example.com/ref", map[string]string{"op": "download2"})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/ref|download2", body)
}

func TestSessionHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("Accept-Language")))
	}))
	defer srv.Close()

	session, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	body, err := session.Get(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Equal(t, AcceptLanguage, body)
}

func TestSessionStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	session, err := NewSession(SessionOptions{})
	require.NoError(t, err)
	_, err = session.Get(context.Background(), srv.URL+"/x", "")

	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
}
