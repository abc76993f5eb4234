package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"shulsite/api/internal/config"
	"shulsite/api/internal/repository"
)

// revisionsKeptPerKey bounds history growth for frequently edited keys.
const revisionsKeptPerKey = 50

// Scheduler runs the periodic database sweeps: expired sessions and CSRF
// tokens, stale login attempt windows, and revision history trimming.
type Scheduler struct {
	cron      *cron.Cron
	sessions  *repository.SessionRepository
	csrf      *repository.CSRFTokenRepository
	attempts  *repository.LoginAttemptRepository
	revisions *repository.RevisionRepository
	cfg       *config.AppConfig
	log       zerolog.Logger
}

// NewScheduler builds the sweep scheduler. db may be nil in development;
// Start then becomes a no-op.
func NewScheduler(db *pgxpool.Pool, cfg *config.AppConfig, log zerolog.Logger) *Scheduler {
	s := &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		cfg:  cfg,
		log:  log,
	}
	if db != nil {
		s.sessions = repository.NewSessionRepository(db)
		s.csrf = repository.NewCSRFTokenRepository(db)
		s.attempts = repository.NewLoginAttemptRepository(db)
		s.revisions = repository.NewRevisionRepository(db)
	}
	return s
}

func (s *Scheduler) Start() error {
	if s.sessions == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 */15 * * * *", s.sweepAuth); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.trimRevisions); err != nil { // nightly
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running sweeps to finish, up to five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) sweepAuth() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n, err := s.sessions.DeleteExpired(ctx); err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
	} else if n > 0 {
		s.log.Debug().Int64("deleted", n).Msg("expired sessions removed")
	}

	if n, err := s.csrf.DeleteExpired(ctx); err != nil {
		s.log.Error().Err(err).Msg("csrf sweep failed")
	} else if n > 0 {
		s.log.Debug().Int64("deleted", n).Msg("expired csrf tokens removed")
	}

	if n, err := s.attempts.DeleteStale(ctx, s.cfg.Security.AttemptWindow); err != nil {
		s.log.Error().Err(err).Msg("login attempt sweep failed")
	} else if n > 0 {
		s.log.Debug().Int64("deleted", n).Msg("stale login attempts removed")
	}
}

func (s *Scheduler) trimRevisions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if n, err := s.revisions.TrimPerKey(ctx, revisionsKeptPerKey); err != nil {
		s.log.Error().Err(err).Msg("revision trim failed")
	} else if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("revision history trimmed")
	}
}
