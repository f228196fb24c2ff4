package themesrc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/postgen/internal/errs"
)

const article = `<!doctype html><html><head><title>Slow   Mornings by the Sea</title></head>
<body><article><h1>Slow Mornings by the Sea</h1>
<p>` + "There is a quiet kind of ambition in waking before the world and watching the tide come in. " +
	"It asks for nothing and still gives you the whole day. " + `</p>
<p>Coffee, salt air and a notebook are enough to set the tone for everything that follows.</p>
</article></body></html>`

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/post"))
	assert.True(t, IsURL(" http://example.com "))
	assert.False(t, IsURL("sunset travel"))
	assert.False(t, IsURL("ftp://example.com"))
	assert.False(t, IsURL("example.com/path"))
}

func TestResolve_PlainTextPassesThrough(t *testing.T) {
	got, err := New().Resolve(context.Background(), "life motivation")
	require.NoError(t, err)
	assert.Equal(t, "life motivation", got)
}

func TestResolve_URLUsesArticleTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(article))
	}))
	defer srv.Close()

	got, err := New().Resolve(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.True(t, strings.Contains(got, "Slow Mornings by the Sea"), got)
	assert.NotContains(t, got, "  ")
}

func TestResolve_HTTPErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Resolve(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errs.IsUpstream(err))
}
