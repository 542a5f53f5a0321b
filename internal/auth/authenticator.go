package auth

import (
	"net/http"
	"strings"

	internal_errors "github.com/bricks-cloud/geminiproxy/internal/errors"
	"github.com/bricks-cloud/geminiproxy/internal/hasher"
	"go.uber.org/zap"
)

// AccessCodePrefix marks an Authorization token as an access code rather
// than a provider api key.
const AccessCodePrefix = "nk-"

// Grant is the outcome of a successful authentication.
type Grant struct {
	Provider string
	// UseServerConfig allows the request to use the server side key and url.
	UseServerConfig bool
}

type Authenticator struct {
	codes          map[string]struct{}
	hideUserApiKey bool
	apiKeyHeaders  []string
	log            *zap.Logger
}

func NewAuthenticator(codes []string, hideUserApiKey bool, apiKeyHeaders []string, log *zap.Logger) *Authenticator {
	return &Authenticator{
		codes:          hasher.HashSet(codes),
		hideUserApiKey: hideUserApiKey,
		apiKeyHeaders:  apiKeyHeaders,
		log:            log,
	}
}

func TrimBearer(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
}

func IsAccessCode(token string) bool {
	return strings.HasPrefix(token, AccessCodePrefix)
}

func (a *Authenticator) NeedCode() bool {
	return len(a.codes) != 0
}

func (a *Authenticator) parseCredentials(req *http.Request) (accessCode string, apiKey string) {
	token := TrimBearer(req.Header.Get("Authorization"))
	if IsAccessCode(token) {
		accessCode = strings.TrimPrefix(token, AccessCodePrefix)
	} else {
		apiKey = token
	}

	if len(apiKey) == 0 {
		for _, name := range a.apiKeyHeaders {
			if key := TrimBearer(req.Header.Get(name)); len(key) != 0 {
				apiKey = key
				break
			}
		}
	}

	return accessCode, apiKey
}

func (a *Authenticator) AuthenticateHttpRequest(req *http.Request, provider string) (*Grant, error) {
	accessCode, apiKey := a.parseCredentials(req)

	if a.NeedCode() && len(apiKey) == 0 {
		if len(accessCode) == 0 {
			return nil, internal_errors.NewAuthError(provider, "empty access code")
		}

		if _, ok := a.codes[hasher.Hash(accessCode)]; !ok {
			return nil, internal_errors.NewAuthError(provider, "wrong access code")
		}
	}

	if a.hideUserApiKey && len(apiKey) != 0 {
		return nil, internal_errors.NewAuthError(provider, "you are not allowed to use your own api key")
	}

	if len(apiKey) != 0 {
		a.log.Debug("use user api key", zap.String("provider", provider))
		return &Grant{Provider: provider}, nil
	}

	a.log.Debug("use system api key", zap.String("provider", provider))
	return &Grant{
		Provider:        provider,
		UseServerConfig: true,
	}, nil
}
