package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"
)

// minPasswordLength is the Firebase Auth password rule.
const minPasswordLength = 6

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FirebaseProvider uses the Admin SDK for account management and the
// Identity Toolkit REST API for password sign-in.
type FirebaseProvider struct {
	auth   *auth.Client
	client *resty.Client
	apiKey string
}

// NewFirebaseProvider creates a provider. baseURL is the Identity Toolkit
// endpoint, e.g. https://identitytoolkit.googleapis.com/v1.
func NewFirebaseProvider(authClient *auth.Client, baseURL, apiKey string, timeout time.Duration) *FirebaseProvider {
	return &FirebaseProvider{
		auth:   authClient,
		client: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout),
		apiKey: apiKey,
	}
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidFormat, minPasswordLength)
	}

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := p.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return record.UID, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	var out signInResponse
	var failure toolkitError

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(signInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&out).
		SetError(&failure).
		Post("/accounts:signInWithPassword")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.IsError() {
		if resp.StatusCode() == http.StatusBadRequest {
			if mapped := toolkitSentinel(failure.Error.Message); mapped != nil {
				return "", mapped
			}
		}
		return "", fmt.Errorf("%w: sign-in failed with status %d: %s", ErrUnavailable, resp.StatusCode(), failure.Error.Message)
	}
	if out.LocalID == "" {
		return "", fmt.Errorf("%w: sign-in response carried no account id", ErrUnavailable)
	}
	return out.LocalID, nil
}

// toolkitSentinel maps Identity Toolkit error messages such as
// "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : ..." to sentinels.
func toolkitSentinel(message string) error {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return ErrInvalidCredentials
	case "INVALID_EMAIL", "MISSING_PASSWORD", "MISSING_EMAIL", "WEAK_PASSWORD":
		return ErrInvalidFormat
	}
	return nil
}

func (p *FirebaseProvider) Revoke(ctx context.Context, uid string) error {
	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *FirebaseProvider) Delete(ctx context.Context, uid string) error {
	if err := p.auth.DeleteUser(ctx, uid); err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
