package google

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationError interface {
	Validation()
}

func encodeConfig(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func TestNormalizeBaseUrl(t *testing.T) {
	cases := map[string]string{
		"my.proxy.example":          "https://my.proxy.example",
		"my.proxy.example/":         "https://my.proxy.example",
		"http://localhost:8080/":    "http://localhost:8080",
		"HTTPS://Example.com":       "HTTPS://Example.com",
		"https://example.com/base/": "https://example.com/base",
		"https://example.com//":     "https://example.com/",
		"  ":                        "",
	}

	for in, expected := range cases {
		assert.Equal(t, expected, NormalizeBaseUrl(in), in)
	}
}

func TestResolvePath(t *testing.T) {
	t.Run("when the route parameter is present", func(t *testing.T) {
		assert.Equal(t, "/v1beta/models/x:generateContent", ResolvePath("/v1beta/models/x:generateContent", "/ignored"))
	})

	t.Run("when the path is derived from the url", func(t *testing.T) {
		assert.Equal(t, "/v1beta/models", ResolvePath("", "/api/google/v1beta/models"))
	})

	t.Run("when a custom routing segment is present", func(t *testing.T) {
		assert.Equal(t, "/v1beta/models/x", ResolvePath("", "/api/google/custom/my-gemini/v1beta/models/x"))
		assert.Equal(t, "/v1beta/models/x", ResolvePath("/custom/my-gemini/v1beta/models/x", ""))
	})

	t.Run("when the custom segment has no name", func(t *testing.T) {
		assert.Equal(t, "/custom/v1beta", ResolvePath("/custom/v1beta", ""))
	})

	t.Run("when nothing remains", func(t *testing.T) {
		assert.Equal(t, "/", ResolvePath("", "/api/google"))
		assert.Equal(t, "/", ResolvePath("/", "/api/google/"))
	})
}

func TestBuildUpstreamUrl(t *testing.T) {
	t.Run("when alt=sse is present inbound", func(t *testing.T) {
		inbound := url.Values{"alt": {"sse"}, "foo": {"bar", "baz"}}

		target := BuildUpstreamUrl("https://example.com", "/v1beta/models/x:streamGenerateContent", inbound)

		parsed, err := url.Parse(target)
		require.Nil(t, err)
		assert.Equal(t, "/v1beta/models/x:streamGenerateContent", parsed.Path)
		assert.Equal(t, "sse", parsed.Query().Get("alt"))
		assert.Equal(t, []string{"bar", "baz"}, parsed.Query()["foo"])
	})

	t.Run("when alt=sse is mixed with other alt values", func(t *testing.T) {
		target := BuildUpstreamUrl("https://example.com", "/x", url.Values{"alt": {"json", "sse"}})

		parsed, err := url.Parse(target)
		require.Nil(t, err)
		assert.Equal(t, []string{"sse"}, parsed.Query()["alt"])
	})

	t.Run("when there is no query", func(t *testing.T) {
		assert.Equal(t, "https://example.com/x", BuildUpstreamUrl("https://example.com", "/x", url.Values{}))
	})

	t.Run("when the inbound values must not be mutated", func(t *testing.T) {
		inbound := url.Values{"alt": {"json", "sse"}}
		BuildUpstreamUrl("https://example.com", "/x", inbound)
		assert.Equal(t, []string{"json", "sse"}, inbound["alt"])
	})
}

func TestParseCustomConfig(t *testing.T) {
	t.Run("when the header is empty", func(t *testing.T) {
		cc, err := ParseCustomConfig("")
		require.Nil(t, err)
		assert.Nil(t, cc)
	})

	t.Run("when the header is valid", func(t *testing.T) {
		cc, err := ParseCustomConfig(encodeConfig(`{"endpoint":" my.proxy.example ","apiKey":"blob-key"}`))
		require.Nil(t, err)
		assert.Equal(t, "my.proxy.example", cc.Endpoint)
		assert.Equal(t, "blob-key", cc.ApiKey)
	})

	t.Run("when the header is url safe base64 without padding", func(t *testing.T) {
		cc, err := ParseCustomConfig(base64.RawURLEncoding.EncodeToString([]byte(`{"endpoint":"a.example"}`)))
		require.Nil(t, err)
		assert.Equal(t, "a.example", cc.Endpoint)
	})

	t.Run("when the header is not base64", func(t *testing.T) {
		_, err := ParseCustomConfig("%%%")
		_, ok := err.(validationError)
		assert.True(t, ok)
	})

	t.Run("when the header is not json", func(t *testing.T) {
		_, err := ParseCustomConfig(encodeConfig(`endpoint=x`))
		_, ok := err.(validationError)
		assert.True(t, ok)
	})

	t.Run("when the header is a json array", func(t *testing.T) {
		_, err := ParseCustomConfig(encodeConfig(`["x"]`))
		_, ok := err.(validationError)
		assert.True(t, ok)
	})
}

func TestCallerApiKey(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, "", CallerApiKey(h))

	h.Set("Authorization", "Bearer auth-key")
	assert.Equal(t, "auth-key", CallerApiKey(h))

	h.Set(ApiKeyHeader, "goog-key")
	assert.Equal(t, "goog-key", CallerApiKey(h))

	h = http.Header{}
	h.Set("Authorization", "Bearer nk-secret")
	assert.Equal(t, "", CallerApiKey(h))
}

func TestResolveTarget(t *testing.T) {
	settings := ServerSettings{
		ApiKey:  "server-key",
		BaseUrl: "https://server.example/",
	}

	t.Run("when the server config is granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models/x:streamGenerateContent?alt=sse", nil)

		target, err := ResolveTarget(req, "/v1beta/models/x:streamGenerateContent", settings, true)
		require.Nil(t, err)
		assert.Equal(t, ServerSource, target.Source)
		assert.Equal(t, "https://server.example/v1beta/models/x:streamGenerateContent?alt=sse", target.Url)
		assert.Equal(t, "server-key", target.ApiKey)
	})

	t.Run("when the server config is not granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models", nil)
		req.Header.Set("Authorization", "Bearer user-key")

		target, err := ResolveTarget(req, "", settings, false)
		require.Nil(t, err)
		assert.Equal(t, DefaultSource, target.Source)
		assert.Equal(t, DefaultBaseUrl+"/v1beta/models", target.Url)
		assert.Equal(t, "user-key", target.ApiKey)
	})

	t.Run("when the server config is granted but no server url is set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/google/v1beta/models", nil)

		target, err := ResolveTarget(req, "", ServerSettings{ApiKey: "server-key"}, true)
		require.Nil(t, err)
		assert.Equal(t, DefaultSource, target.Source)
		assert.Equal(t, "server-key", target.ApiKey)
	})

	t.Run("when a custom endpoint header lacks a scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models", nil)
		req.Header.Set(CustomEndpointHeader, "my.proxy.example")
		req.Header.Set(CustomConfigHeader, encodeConfig(`{"endpoint":"ignored.example"}`))

		target, err := ResolveTarget(req, "", settings, true)
		require.Nil(t, err)
		assert.Equal(t, EndpointHeaderSource, target.Source)
		assert.Equal(t, "https://my.proxy.example", target.BaseUrl)
		assert.Equal(t, "", target.ApiKey)
	})

	t.Run("when the config header supplies the endpoint and key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models", nil)
		req.Header.Set(CustomConfigHeader, encodeConfig(`{"endpoint":"blob.example/","apiKey":"blob-key"}`))

		target, err := ResolveTarget(req, "", settings, true)
		require.Nil(t, err)
		assert.Equal(t, ConfigHeaderSource, target.Source)
		assert.Equal(t, "https://blob.example", target.BaseUrl)
		assert.Equal(t, "blob-key", target.ApiKey)
		assert.True(t, target.IsCustom())
	})

	t.Run("when the server config is granted but the endpoint is custom", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models", nil)
		req.Header.Set(CustomEndpointHeader, "https://relay.example")

		target, err := ResolveTarget(req, "", settings, true)
		require.Nil(t, err)
		assert.True(t, target.IsCustom())
		assert.NotEqual(t, "server-key", target.ApiKey)
		assert.Empty(t, target.ApiKey)
	})

	t.Run("when the endpoint header wins over a malformed config header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models", nil)
		req.Header.Set(CustomEndpointHeader, "relay.example")
		req.Header.Set(CustomConfigHeader, "!!!")
		req.Header.Set(ApiKeyHeader, "caller-key")

		target, err := ResolveTarget(req, "", settings, false)
		require.Nil(t, err)
		assert.Equal(t, EndpointHeaderSource, target.Source)
		assert.Equal(t, "https://relay.example/v1beta/models", target.Url)
		assert.Equal(t, "caller-key", target.ApiKey)
	})

	t.Run("when the config header is malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/google/v1beta/models", nil)
		req.Header.Set(CustomConfigHeader, "not base64!")

		_, err := ResolveTarget(req, "", settings, true)
		assert.NotNil(t, err)
	})
}
