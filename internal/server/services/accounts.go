// Package services contains server-side business logic. AccountService
// handles self-registration, login and admin account management, and mints
// tokens for authenticated identities.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Login results reported to a LoginObserver.
const (
	LoginSucceeded          = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginFailed             = "error"
)

// LoginObserver is notified of every login attempt outcome.
type LoginObserver interface {
	ObserveLogin(result string)
}

// Session is what a client receives after signup or login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	models.Profile
}

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
	models.Profile
}

// UpdateUserInput carries the fields to change; nil fields are left as is.
type UpdateUserInput struct {
	Profile  *models.Profile `json:"profile,omitempty"`
	Password *string         `json:"password,omitempty"`
	IsAdmin  *bool           `json:"isAdmin,omitempty"`
}

type AccountService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	hasher              *auth.Hasher
	issuer              *auth.Issuer
	adminBypassStrength bool
	observer            LoginObserver
	newID               func() string
	withTx              txRunner
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher, issuer *auth.Issuer, adminBypassStrength bool) *AccountService {
	return &AccountService{
		db:                  db,
		repomanager:         m,
		hasher:              hasher,
		issuer:              issuer,
		adminBypassStrength: adminBypassStrength,
		newID:               func() string { return uuid.NewString() },
		withTx:              dbTx(db),
	}
}

// SetLoginObserver installs o as the receiver of login outcomes.
func (s *AccountService) SetLoginObserver(o LoginObserver) {
	s.observer = o
}

// Signup registers a regular account and signs it in. Self-registration can
// never produce an administrator.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, common.NewValidationError("username", "username and password are required")
	}
	if err := auth.CheckStrength(in.Password); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, username, in.Password, false, in.Profile)
	if err != nil {
		return nil, err
	}
	return s.newSession(user)
}

// Login checks a username/password pair. An unknown username and a wrong
// password both yield common.ErrorInvalidCredentials after the same amount
// of hashing work.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	session, err := s.login(ctx, username, password)
	s.observe(err)
	return session, err
}

func (s *AccountService) login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.hasher.CompareDummy(password)
		return nil, common.ErrorInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(password)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrorInvalidCredentials
	}
	return s.newSession(user)
}

func (s *AccountService) observe(err error) {
	if s.observer == nil {
		return
	}
	switch {
	case err == nil:
		s.observer.ObserveLogin(LoginSucceeded)
	case errors.Is(err, common.ErrorInvalidCredentials):
		s.observer.ObserveLogin(LoginInvalidCredentials)
	default:
		s.observer.ObserveLogin(LoginFailed)
	}
}

// AdminCreate lets an administrator create an account with any role. The
// password policy is applied only when the bypass is disabled.
func (s *AccountService) AdminCreate(ctx context.Context, actor auth.Principal, in CreateUserInput) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, common.ErrorInsufficientPrivilege
	}

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, common.NewValidationError("username", "username and password are required")
	}
	if !s.adminBypassStrength {
		if err := auth.CheckStrength(in.Password); err != nil {
			return nil, err
		}
	}
	return s.createUser(ctx, username, in.Password, in.IsAdmin, in.Profile)
}

func (s *AccountService) createUser(ctx context.Context, username, password string, isAdmin bool, profile models.Profile) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		Profile:      profile,
	}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

func (s *AccountService) newSession(user *models.User) (*Session, error) {
	token, err := s.issuer.Issue(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &Session{Token: token.Raw, ExpiresAt: token.ExpiresAt, User: user}, nil
}

// Get returns the account id. Users may read only their own account.
func (s *AccountService) Get(ctx context.Context, actor auth.Principal, id string) (*models.User, error) {
	if !actor.IsAdmin && actor.ID != id {
		return nil, common.ErrorInsufficientPrivilege
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context, actor auth.Principal) ([]*models.User, error) {
	if !actor.IsAdmin {
		return nil, common.ErrorInsufficientPrivilege
	}
	return s.repomanager.Users(s.db).List(ctx)
}

// Update changes an account. Users may edit their own profile and password;
// only administrators may change a role. The row is locked from read to
// write so concurrent updates apply one after the other.
func (s *AccountService) Update(ctx context.Context, actor auth.Principal, id string, in UpdateUserInput) (*models.User, error) {
	if !actor.IsAdmin && actor.ID != id {
		return nil, common.ErrorInsufficientPrivilege
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	var hash string
	if in.Password != nil {
		if err := auth.CheckStrength(*in.Password); err != nil {
			return nil, err
		}
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var user *models.User
	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if in.IsAdmin != nil && *in.IsAdmin != u.IsAdmin {
			if !actor.IsAdmin {
				return common.ErrorInsufficientPrivilege
			}
			u.IsAdmin = *in.IsAdmin
		}
		if in.Profile != nil {
			u.Profile = *in.Profile
		}
		if hash != "" {
			u.PasswordHash = hash
		}

		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.IsAdmin {
		return common.ErrorInsufficientPrivilege
	}
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).Delete(ctx, id)
}
