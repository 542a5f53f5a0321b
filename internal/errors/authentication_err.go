package errors

type AuthError struct {
	provider string
	message  string
}

func NewAuthError(provider, msg string) *AuthError {
	return &AuthError{
		provider: provider,
		message:  msg,
	}
}

func (ae *AuthError) Error() string {
	return ae.message
}

func (ae *AuthError) Provider() string {
	return ae.provider
}

func (ae *AuthError) Authenticated() {}
