package google

import (
	"net/http"
	"strings"
)

type BaseSource string

const (
	EndpointHeaderSource BaseSource = "endpoint_header"
	ConfigHeaderSource   BaseSource = "config_header"
	ServerSource         BaseSource = "server"
	DefaultSource        BaseSource = "default"
)

// ServerSettings are the server side credentials visible to a request.
type ServerSettings struct {
	ApiKey  string
	BaseUrl string
}

type Target struct {
	BaseUrl string
	Source  BaseSource
	Path    string
	Url     string
	ApiKey  string
}

func (t *Target) IsCustom() bool {
	return t.Source == EndpointHeaderSource || t.Source == ConfigHeaderSource
}

// ResolveTarget works out where a request goes and which key it carries.
// The server key is only attached when useServer is granted and the base
// url was not supplied by the caller.
func ResolveTarget(req *http.Request, param string, settings ServerSettings, useServer bool) (*Target, error) {
	cc, err := ParseCustomConfig(req.Header.Get(CustomConfigHeader))
	if err != nil {
		// the endpoint header outranks the blob, so a bad blob only matters
		// when it would be used
		if len(NormalizeBaseUrl(req.Header.Get(CustomEndpointHeader))) == 0 {
			return nil, err
		}

		cc = nil
	}

	t := &Target{}
	t.BaseUrl, t.Source = resolveBaseUrl(req.Header.Get(CustomEndpointHeader), cc, settings.BaseUrl, useServer)
	t.Path = ResolvePath(param, req.URL.Path)
	t.Url = BuildUpstreamUrl(t.BaseUrl, t.Path, req.URL.Query())
	t.ApiKey = resolveApiKey(req.Header, cc, settings.ApiKey, useServer && !t.IsCustom())

	return t, nil
}

func resolveBaseUrl(endpointHeader string, cc *CustomConfig, serverUrl string, useServer bool) (string, BaseSource) {
	if normalized := NormalizeBaseUrl(endpointHeader); len(normalized) != 0 {
		return normalized, EndpointHeaderSource
	}

	if cc != nil {
		if normalized := NormalizeBaseUrl(cc.Endpoint); len(normalized) != 0 {
			return normalized, ConfigHeaderSource
		}
	}

	if useServer {
		if normalized := NormalizeBaseUrl(serverUrl); len(normalized) != 0 {
			return normalized, ServerSource
		}
	}

	return DefaultBaseUrl, DefaultSource
}

func resolveApiKey(h http.Header, cc *CustomConfig, serverKey string, useServer bool) string {
	if useServer {
		return strings.TrimSpace(serverKey)
	}

	if key := CallerApiKey(h); len(key) != 0 {
		return key
	}

	if cc != nil {
		return cc.ApiKey
	}

	return ""
}
