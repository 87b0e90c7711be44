package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dayflow/dayflow-backend/internal/hr/credential"
	"github.com/dayflow/dayflow-backend/internal/hr/jwt"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/pkg/config"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// DefaultAdminPassword is the shared admin password when none is configured
const DefaultAdminPassword = "admin@123"

// AdminID is the session id of every admin sign-in
const AdminID = "1"

// CredentialSource looks up approved accounts and pending registrations
type CredentialSource interface {
	Credential(ctx context.Context, email string) (repository.ApprovedUser, error)
	PendingByEmail(ctx context.Context, email string) bool
}

// RemoteSignIn resolves accounts kept by a remote registration service
type RemoteSignIn interface {
	SignIn(ctx context.Context, email, password string) (*repository.Session, error)
}

// AuthService signs users in
type AuthService struct {
	repos         *repository.Repositories
	accounts      CredentialSource
	remote        RemoteSignIn
	hasher        *credential.Hasher
	jwtManager    *jwt.Manager
	adminPassword string
	logger        *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repos *repository.Repositories, accounts CredentialSource, hasher *credential.Hasher, jwtManager *jwt.Manager, cfg *config.AuthConfig, log *logger.Logger) *AuthService {
	adminPassword := cfg.AdminPassword
	if adminPassword == "" {
		adminPassword = DefaultAdminPassword
	}
	return &AuthService{
		repos:         repos,
		accounts:      accounts,
		hasher:        hasher,
		jwtManager:    jwtManager,
		adminPassword: adminPassword,
		logger:        log.WithComponent("auth-service"),
	}
}

// WithRemote makes sign-in fall back to remote for accounts unknown
// locally
func (s *AuthService) WithRemote(remote RemoteSignIn) *AuthService {
	s.remote = remote
	return s
}

// SignInRequest represents a sign-in request
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse is the issued token and the signed-in user
type SignInResponse struct {
	*jwt.Token
	User repository.Session `json:"user"`
}

// SignIn resolves the user in order: admin addresses, built-in accounts,
// approved registrations, then the remote service when one is set. A
// pending registration is reported as such.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	session, err := s.resolve(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn().
			Str("email", repository.NormalizeEmail(req.Email)).
			Str("reason", err.Error()).
			Msg("sign-in rejected")
		return nil, err
	}

	token, err := s.jwtManager.Generate(session)
	if err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to issue token", http.StatusInternalServerError)
	}

	s.logger.Info().
		Str("user_id", session.ID).
		Str("role", string(session.Role)).
		Msg("signed in")
	return &SignInResponse{Token: token, User: session}, nil
}

func (s *AuthService) resolve(ctx context.Context, email, password string) (repository.Session, error) {
	email = strings.TrimSpace(email)
	normalized := repository.NormalizeEmail(email)

	if strings.Contains(normalized, "admin") {
		if password != s.adminPassword {
			return repository.Session{}, errors.InvalidCredentials("Invalid admin password")
		}
		return repository.Session{
			ID:    AdminID,
			Email: email,
			Name:  repository.NameFromEmail(email),
			Role:  repository.RoleAdmin,
		}, nil
	}

	for _, acct := range s.repos.Seed.Accounts {
		if repository.NormalizeEmail(acct.Email) != normalized {
			continue
		}
		if acct.Password != password {
			return repository.Session{}, errors.InvalidCredentials(fmt.Sprintf("Invalid password for %s", acct.Name))
		}
		return s.seedSession(ctx, acct), nil
	}

	user, err := s.accounts.Credential(ctx, email)
	if err == nil {
		if !s.hasher.Verify(user.Password, password) {
			return repository.Session{}, errors.InvalidCredentials("Invalid password")
		}
		return sessionFor(user), nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return repository.Session{}, err
	}

	if s.accounts.PendingByEmail(ctx, email) {
		return repository.Session{}, errors.Forbidden("Your account is pending approval")
	}
	if s.remote != nil {
		session, err := s.remote.SignIn(ctx, email, password)
		if err != nil {
			return repository.Session{}, err
		}
		return *session, nil
	}
	return repository.Session{}, errors.InvalidCredentials("Account not found")
}

// seedSession builds a built-in account's session from its employee
// record, which may have been edited.
func (s *AuthService) seedSession(ctx context.Context, acct repository.Account) repository.Session {
	session := repository.Session{
		ID:    acct.EmployeeID,
		Email: acct.Email,
		Name:  acct.Name,
		Role:  repository.RoleEmployee,
	}
	if emp, err := s.repos.Employees.Get(ctx, acct.EmployeeID); err == nil {
		session.Name = emp.Name
		session.Department = emp.Department
		session.Position = emp.Position
		session.Phone = emp.Phone
	}
	return session
}

func sessionFor(u repository.ApprovedUser) repository.Session {
	id := u.EmployeeID
	if id == "" {
		id = u.ID
	}
	return repository.Session{
		ID:         id,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
		Position:   u.Position,
		Phone:      u.Phone,
	}
}
