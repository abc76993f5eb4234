package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shulsite/api/internal/config"
	"shulsite/api/internal/models"
	"shulsite/api/internal/security"
)

var ErrInvalidPINFormat = errors.New("pin must be exactly 6 digits")

// LockoutError rejects a login before the credential store is consulted.
type LockoutError struct {
	RemainingSeconds int
}

func (e *LockoutError) Error() string {
	minutes := (e.RemainingSeconds + 59) / 60
	plural := "s"
	if minutes == 1 {
		plural = ""
	}
	return fmt.Sprintf("Too many failed attempts. Try again in %d minute%s.", minutes, plural)
}

// FailedLoginError reports a wrong PIN together with the rate-limiter
// state the caller surfaces to the client.
type FailedLoginError struct {
	Locked            bool
	AttemptsRemaining int
}

func (e *FailedLoginError) Error() string {
	if e.Locked {
		return "Too many failed attempts. Account locked for 15 minutes."
	}
	if e.AttemptsRemaining <= 2 {
		plural := "s"
		if e.AttemptsRemaining == 1 {
			plural = ""
		}
		return fmt.Sprintf("Invalid PIN. %d attempt%s remaining.", e.AttemptsRemaining, plural)
	}
	return "Invalid PIN"
}

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePIN(ctx context.Context, id string, pinHash string) error
	UpdateLastLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	FindUserBySession(ctx context.Context, sessionID string) (models.User, error)
	Delete(ctx context.Context, sessionID string) error
}

type AttemptStore interface {
	RemainingLockout(ctx context.Context, ipAddress string) (int, error)
	RecordFailure(ctx context.Context, ipAddress string, window time.Duration, maxAttempts int, lockout time.Duration) (models.LoginAttempt, error)
	Clear(ctx context.Context, ipAddress string) error
}

type CSRFStore interface {
	Create(ctx context.Context, token models.CSRFToken) error
	Valid(ctx context.Context, token string, sessionID string) (bool, error)
	DeleteForSession(ctx context.Context, sessionID string) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	attempts AttemptStore
	csrf     CSRFStore
	cfg      *config.AppConfig
	log      zerolog.Logger
	sleep    func(time.Duration)
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	attempts AttemptStore,
	csrf CSRFStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		attempts: attempts,
		csrf:     csrf,
		cfg:      cfg,
		log:      log,
		sleep:    time.Sleep,
	}
}

type LoginResult struct {
	User          models.User
	SessionID     string
	SessionExpiry time.Time
	CSRFToken     string
	CSRFExpiry    time.Time
}

// Login runs the whole entry flow: PIN format check, per-address lockout
// check, credential verification, failure accounting, and on success
// session plus CSRF token issuance.
func (s *AuthService) Login(ctx context.Context, pin string, ipAddress string) (LoginResult, error) {
	if !security.ValidPIN(pin) {
		return LoginResult{}, ErrInvalidPINFormat
	}

	remaining, err := s.attempts.RemainingLockout(ctx, ipAddress)
	if err != nil {
		return LoginResult{}, fmt.Errorf("check lockout: %w", err)
	}
	if remaining > 0 {
		return LoginResult{}, &LockoutError{RemainingSeconds: remaining}
	}

	user, found, err := s.verifyPIN(ctx, pin)
	if err != nil {
		return LoginResult{}, fmt.Errorf("verify login: %w", err)
	}

	if !found {
		attempt, err := s.attempts.RecordFailure(ctx, ipAddress,
			s.cfg.Security.AttemptWindow,
			s.cfg.Security.MaxLoginAttempts,
			s.cfg.Security.LockoutDuration,
		)
		if err != nil {
			return LoginResult{}, fmt.Errorf("record failed attempt: %w", err)
		}

		// Fixed delay on every failed verification blunts timing-based
		// PIN enumeration.
		s.sleep(s.cfg.Security.FailedLoginDelay)

		attemptsRemaining := s.cfg.Security.MaxLoginAttempts - attempt.Attempts
		if attemptsRemaining < 0 {
			attemptsRemaining = 0
		}

		s.log.Warn().
			Str("ip", ipAddress).
			Int("attempts", attempt.Attempts).
			Msg("failed login attempt")

		return LoginResult{}, &FailedLoginError{
			Locked:            attempt.LockedUntil != nil && attempt.LockedUntil.After(time.Now()),
			AttemptsRemaining: attemptsRemaining,
		}
	}

	if err := s.attempts.Clear(ctx, ipAddress); err != nil {
		s.log.Error().Err(err).Str("ip", ipAddress).Msg("clear failed attempts")
	}

	return s.issueSession(ctx, user)
}

// verifyPIN checks the PIN against every user; PINs carry no username so
// the whole (tiny) credential table is the search space.
func (s *AuthService) verifyPIN(ctx context.Context, pin string) (models.User, bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return models.User{}, false, err
	}

	for _, user := range users {
		ok, err := security.VerifyPIN(pin, user.PINHash)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("unreadable pin hash")
			continue
		}
		if ok {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (s *AuthService) issueSession(ctx context.Context, user models.User) (LoginResult, error) {
	sessionID, err := security.GenerateToken()
	if err != nil {
		return LoginResult{}, err
	}

	session := models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.Security.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("update last login")
	}

	csrfToken, csrfExpiry, err := s.IssueCSRFToken(ctx, sessionID)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("login succeeded")

	return LoginResult{
		User:          user,
		SessionID:     sessionID,
		SessionExpiry: session.ExpiresAt,
		CSRFToken:     csrfToken,
		CSRFExpiry:    csrfExpiry,
	}, nil
}

// IssueCSRFToken mints an anti-forgery token bound to the session. Its
// expiry is independent of the session's own.
func (s *AuthService) IssueCSRFToken(ctx context.Context, sessionID string) (string, time.Time, error) {
	token, err := security.GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiry := time.Now().Add(s.cfg.Security.CSRFTokenTTL)
	if err := s.csrf.Create(ctx, models.CSRFToken{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiry,
	}); err != nil {
		return "", time.Time{}, fmt.Errorf("create csrf token: %w", err)
	}
	return token, expiry, nil
}

// ValidateSession resolves a session id to its user. Missing or expired
// sessions surface as repository.ErrSessionNotFound; any other error is
// a store failure.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (models.User, error) {
	return s.sessions.FindUserBySession(ctx, sessionID)
}

func (s *AuthService) ValidateCSRF(ctx context.Context, token string, sessionID string) (bool, error) {
	if token == "" || sessionID == "" {
		return false, nil
	}
	return s.csrf.Valid(ctx, token, sessionID)
}

// Logout tears down the session and every CSRF token bound to it.
// Succeeds even when the session never existed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.csrf.DeleteForSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete csrf tokens: %w", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
