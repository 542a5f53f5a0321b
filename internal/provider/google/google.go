package google

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/bricks-cloud/geminiproxy/internal/auth"
	internal_errors "github.com/bricks-cloud/geminiproxy/internal/errors"
	"github.com/tidwall/gjson"
)

const (
	ProviderName = "google"

	DefaultBaseUrl = "https://generativelanguage.googleapis.com"
	PathPrefix     = "/api/google"

	ApiKeyHeader         = "x-goog-api-key"
	CustomEndpointHeader = "x-custom-provider-endpoint"
	CustomConfigHeader   = "x-custom-provider-config"

	streamParam = "alt"
	streamValue = "sse"

	customRouteSegment = "custom"
)

// CustomConfig is the caller supplied endpoint/key pair carried base64
// encoded in CustomConfigHeader.
type CustomConfig struct {
	Endpoint string `json:"endpoint"`
	ApiKey   string `json:"apiKey"`
}

func ParseCustomConfig(header string) (*CustomConfig, error) {
	trimmed := strings.TrimSpace(header)
	if len(trimmed) == 0 {
		return nil, nil
	}

	decoded, err := decodeBase64(trimmed)
	if err != nil {
		return nil, internal_errors.NewValidationError(CustomConfigHeader, "value is not base64 encoded")
	}

	if !gjson.ValidBytes(decoded) {
		return nil, internal_errors.NewValidationError(CustomConfigHeader, "value is not valid json")
	}

	parsed := gjson.ParseBytes(decoded)
	if !parsed.IsObject() {
		return nil, internal_errors.NewValidationError(CustomConfigHeader, "value must be a json object")
	}

	return &CustomConfig{
		Endpoint: strings.TrimSpace(parsed.Get("endpoint").String()),
		ApiKey:   strings.TrimSpace(parsed.Get("apiKey").String()),
	}, nil
}

func decodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		decoded, err := enc.DecodeString(s)
		if err == nil {
			return decoded, nil
		}
	}

	return nil, base64.CorruptInputError(0)
}

// NormalizeBaseUrl prepends https:// when no scheme is given and drops one
// trailing slash.
func NormalizeBaseUrl(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	lowered := strings.ToLower(trimmed)
	if !strings.HasPrefix(lowered, "http://") && !strings.HasPrefix(lowered, "https://") {
		trimmed = "https://" + trimmed
	}

	return strings.TrimSuffix(trimmed, "/")
}

// ResolvePath prefers the route parameter and falls back to the inbound url
// path with PathPrefix removed. A leading custom/<name>/ segment pair is
// unwrapped. The result always starts with a slash.
func ResolvePath(param, urlPath string) string {
	p := strings.TrimPrefix(param, "/")
	if len(p) == 0 {
		p = strings.TrimPrefix(strings.TrimPrefix(urlPath, PathPrefix), "/")
	}

	return "/" + unwrapCustomRoute(p)
}

func unwrapCustomRoute(p string) string {
	if !strings.HasPrefix(p, customRouteSegment+"/") {
		return p
	}

	rest := strings.TrimPrefix(p, customRouteSegment+"/")
	idx := strings.Index(rest, "/")
	if idx < 0 {
		return p
	}

	return rest[idx+1:]
}

// BuildUpstreamUrl joins base and path and copies every inbound query
// parameter. alt=sse is force set when it was present inbound.
func BuildUpstreamUrl(base, path string, inbound url.Values) string {
	query := url.Values{}
	for k, values := range inbound {
		query[k] = append([]string(nil), values...)
	}

	if IsStreaming(inbound) {
		query.Set(streamParam, streamValue)
	}

	target := base + path
	if encoded := query.Encode(); len(encoded) != 0 {
		target += "?" + encoded
	}

	return target
}

func IsStreaming(query url.Values) bool {
	for _, v := range query[streamParam] {
		if v == streamValue {
			return true
		}
	}

	return false
}

// CallerApiKey returns the key the caller sent in ApiKeyHeader or the
// Authorization header, with any Bearer prefix trimmed. Access codes are not
// api keys and are skipped.
func CallerApiKey(h http.Header) string {
	for _, raw := range []string{h.Get(ApiKeyHeader), h.Get("Authorization")} {
		token := auth.TrimBearer(raw)
		if len(token) != 0 && !auth.IsAccessCode(token) {
			return token
		}
	}

	return ""
}
