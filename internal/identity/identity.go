// Package identity registers and authenticates accounts with email and password.
//
// The authenticated user is kept as a session marker in the scs session so the same code works with the SQLite
// and the local session store.
package identity

import (
	"context"
	"encoding/gob"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is the longest input bcrypt accepts, in bytes.
	MaxPasswordLength = 72
	sessionKey        = "identity"
)

func init() { //nolint:gochecknoinits // the session marker is gob encoded by scs.
	gob.Register(Session{})
}

// Session is the marker of an authenticated user.
type Session struct {
	UserID      string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

type Accounts interface {
	Create(ctx context.Context, account models.Account) error
	Get(ctx context.Context, id string) (models.Account, error)
	GetByEmail(ctx context.Context, email string) (models.Account, error)
}

// Profiles creates the profile of a new account.
type Profiles interface {
	MergeAndSave(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error)
}

type Options struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// AdminEmails get the admin role when they register.
	AdminEmails []string
}

// ChangeFunc observes sign-ins and sign-outs. session is nil on sign-out.
type ChangeFunc func(ctx context.Context, session *Session)

type Service struct {
	accounts       Accounts
	profiles       Profiles
	sessionManager *scs.SessionManager
	logger         *slog.Logger
	cost           int
	admins         map[string]bool

	mu        sync.Mutex
	observers map[int]ChangeFunc
	nextID    int
}

func New(
	accounts Accounts, profiles Profiles, sessionManager *scs.SessionManager, logger *slog.Logger, opts Options,
) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	admins := make(map[string]bool, len(opts.AdminEmails))
	for _, email := range opts.AdminEmails {
		admins[normalizeEmail(email)] = true
	}
	return &Service{
		accounts:       accounts,
		profiles:       profiles,
		sessionManager: sessionManager,
		logger:         logger,
		cost:           cost,
		admins:         admins,
		mu:             sync.Mutex{},
		observers:      map[int]ChangeFunc{},
		nextID:         0,
	}
}

// Register creates the account and its profile and signs the user in.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return Session{}, err //nolint:exhaustruct // zero value.
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return Session{}, newError(KindWeakPassword, nil) //nolint:exhaustruct // zero value.
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Session{}, newError(KindUnknown, errors.Wrap(err, "hash password")) //nolint:exhaustruct // zero value.
	}
	role := models.RoleUser
	if s.admins[email] {
		role = models.RoleAdmin
	}
	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		Created:      time.Now().UTC(),
	}
	if err = s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return Session{}, newError(KindEmailInUse, err) //nolint:exhaustruct // zero value.
		}
		return Session{}, newError(KindUnknown, errors.Wrap(err, "create account")) //nolint:exhaustruct // zero value.
	}

	p := models.NewProfile(account.ID, displayName, email, role, account.Created)
	if _, err = s.profiles.MergeAndSave(ctx, account.ID, p.IdentityPatch()); err != nil {
		// The account exists already so the user can still sign in. The profile is created on first write.
		s.logger.LogAttrs(ctx, slog.LevelError, "create profile", errors.SlogError(err),
			slog.String("user_id", account.ID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "account registered", slog.String("user_id", account.ID),
		slog.String("role", role))
	return s.signIn(ctx, account)
}

// Login verifies the credentials and signs the user in.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return Session{}, err //nolint:exhaustruct // zero value.
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Session{}, newError(KindNotFound, err) //nolint:exhaustruct // zero value.
		}
		return Session{}, newError(KindUnknown, errors.Wrap(err, "get account")) //nolint:exhaustruct // zero value.
	}
	if err = bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return Session{}, newError(KindBadCredential, nil) //nolint:exhaustruct // zero value.
	}
	return s.signIn(ctx, account)
}

func (s *Service) signIn(ctx context.Context, account models.Account) (Session, error) {
	session := Session{
		UserID:      account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        account.Role,
	}
	if err := s.sessionManager.RenewToken(ctx); err != nil {
		return Session{}, newError(KindUnknown, errors.Wrap(err, "renew session token")) //nolint:exhaustruct // zero value.
	}
	s.sessionManager.Put(ctx, sessionKey, session)
	s.notify(ctx, &session)
	return session, nil
}

// Logout removes the session marker. Logging out without a session is not an error.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessionManager.RenewToken(ctx); err != nil {
		return newError(KindUnknown, errors.Wrap(err, "renew session token"))
	}
	s.sessionManager.Remove(ctx, sessionKey)
	s.notify(ctx, nil)
	return nil
}

// CurrentSession returns the signed in user of the request session.
func (s *Service) CurrentSession(ctx context.Context) (Session, bool) {
	session, ok := s.sessionManager.Get(ctx, sessionKey).(Session)
	return session, ok
}

// OnSessionChange registers fn to be called after every sign-in and sign-out. The returned function removes it.
func (s *Service) OnSessionChange(fn ChangeFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Service) notify(ctx context.Context, session *Session) {
	s.mu.Lock()
	observers := make([]ChangeFunc, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()
	for _, fn := range observers {
		fn(ctx, session)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail accepts bare addresses only, no display names.
func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return "", newError(KindInvalidEmail, err)
	}
	return email, nil
}
