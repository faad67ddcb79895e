package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yantrahq/yantra/internal/identity"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
	"github.com/yantrahq/yantra/internal/session"
)

// Where a client should go after signing in.
const (
	NextDashboard = "dashboard"
	NextTeam      = "team"
)

// LoginResult is a started or swapped session plus the next screen.
type LoginResult struct {
	Session *session.Context
	Next    string
}

// IdentityService registers, signs in and signs out principals.
type IdentityService struct {
	provider   identity.Provider
	principals repository.PrincipalRepository
	sessions   *session.Manager
	audit      *AuditService
	logger     *logging.Logger
	policy     CallPolicy
	now        func() time.Time
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	provider identity.Provider,
	principals repository.PrincipalRepository,
	sessions *session.Manager,
	audit *AuditService,
	logger *logging.Logger,
	policy CallPolicy,
) *IdentityService {
	return &IdentityService{
		provider:   provider,
		principals: principals,
		sessions:   sessions,
		audit:      audit,
		logger:     logger,
		policy:     policy,
		now:        time.Now,
	}
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrInvalidCredentialFormat
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidCredentialFormat
	}
	return nil
}

func providerError(err error) error {
	switch {
	case errors.Is(err, identity.ErrEmailExists):
		return ErrDuplicateAccount.Wrap(err)
	case errors.Is(err, identity.ErrInvalidFormat):
		return ErrInvalidCredentialFormat.Wrap(err)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return ErrInvalidCredentials.Wrap(err)
	}
	return unavailable(err)
}

// Register creates an account and its profile with no team association,
// then begins a session for it.
func (s *IdentityService) Register(ctx context.Context, email, password, displayName, ip string) (*session.Context, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "IdentityService.Register")
	defer span.End()

	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, invalidInput("display name is required")
	}

	var uid string
	err := s.policy.write(ctx, func(ctx context.Context) error {
		var err error
		uid, err = s.provider.SignUp(ctx, email, password, displayName)
		return err
	})
	if err != nil {
		s.audit.LogFailure(ctx, AuditEventRegister, ip, "sign-up rejected", err)
		return nil, providerError(err)
	}
	span.SetAttributes(attribute.String("principal.id", uid))

	principal := &models.Principal{
		ID:          uid,
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.policy.write(ctx, func(ctx context.Context) error {
		return s.principals.Create(ctx, principal)
	}); err != nil {
		s.logger.Error("Failed to persist profile for %s, rolling back account: %v", uid, err)
		if derr := s.policy.write(context.WithoutCancel(ctx), func(ctx context.Context) error {
			return s.provider.Delete(ctx, uid)
		}); derr != nil {
			s.logger.Warn("Failed to delete orphaned account %s: %v", uid, derr)
		}
		return nil, unavailable(err)
	}

	s.audit.Log(ctx, AuditEventRegister, principal, ip, nil)
	return s.sessions.Begin(ctx, principal), nil
}

// Login authenticates and loads the profile. With a live existingToken the
// session's principal is swapped; otherwise a new session begins.
func (s *IdentityService) Login(ctx context.Context, email, password, existingToken, ip string) (*LoginResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "IdentityService.Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var uid string
	err := s.policy.write(ctx, func(ctx context.Context) error {
		var err error
		uid, err = s.provider.SignIn(ctx, email, password)
		return err
	})
	if err != nil {
		s.audit.LogFailure(ctx, AuditEventLoginFailed, ip, "sign-in rejected", err)
		return nil, providerError(err)
	}

	principal, err := s.Profile(ctx, uid)
	if err != nil {
		return nil, err
	}

	var sc *session.Context
	if existingToken != "" {
		sc, err = s.sessions.Switch(ctx, existingToken, principal)
	}
	if sc == nil || err != nil {
		sc = s.sessions.Begin(ctx, principal)
	}

	next := NextTeam
	if principal.HasTeam() {
		next = NextDashboard
	}

	s.audit.Log(ctx, AuditEventLogin, principal, ip, map[string]interface{}{"next": next})
	return &LoginResult{Session: sc, Next: next}, nil
}

// Logout clears the session unconditionally, then revokes provider sessions
// best-effort. A revocation failure is logged, never returned.
func (s *IdentityService) Logout(ctx context.Context, token, ip string) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "IdentityService.Logout")
	defer span.End()

	sc, ok := s.sessions.Get(token)
	if !ok {
		return
	}
	principal := sc.Principal()
	s.sessions.End(ctx, token)

	if principal == nil {
		return
	}
	s.audit.Log(ctx, AuditEventLogout, principal, ip, nil)

	if err := s.policy.write(ctx, func(ctx context.Context) error {
		return s.provider.Revoke(ctx, principal.ID)
	}); err != nil {
		s.logger.Warn("Remote sign-out failed for %s: %v", principal.ID, err)
	}
}

// Profile reads a principal's profile.
func (s *IdentityService) Profile(ctx context.Context, id string) (*models.Principal, error) {
	return NewProfileReader(s.principals, s.policy).Profile(ctx, id)
}

// ProfileReader reads principal profiles with bounded, retried reads. The
// session binder uses it directly, since the binder must exist before the
// IdentityService that begins sessions.
type ProfileReader struct {
	principals repository.PrincipalRepository
	policy     CallPolicy
}

// NewProfileReader creates a profile reader
func NewProfileReader(principals repository.PrincipalRepository, policy CallPolicy) *ProfileReader {
	return &ProfileReader{principals: principals, policy: policy}
}

// Profile reads a principal's profile.
func (r *ProfileReader) Profile(ctx context.Context, id string) (*models.Principal, error) {
	p, err := read(ctx, r.policy, func(ctx context.Context) (*models.Principal, error) {
		return r.principals.Get(ctx, id)
	})
	if err != nil {
		return nil, repoError(err, ErrPrincipalNotFound)
	}
	return p, nil
}
