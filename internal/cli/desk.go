package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/hooks"
	"github.com/soyeahso/agentdesk/internal/logging"
	"github.com/soyeahso/agentdesk/internal/notify"
	"github.com/soyeahso/agentdesk/internal/session"
	"github.com/soyeahso/agentdesk/internal/store"
)

// desk holds the long-lived pieces shared by serve and chat.
type desk struct {
	catalog  *catalog.Catalog
	hooks    *hooks.Manager
	sessions *session.Manager
	closers  []io.Closer
}

// newDesk builds the catalog, hooks, notifiers, archive and session
// manager described by cfg. Extra options apply to every session.
func newDesk(cfg config.Config, p config.Paths, log *logging.Logger, extra ...session.Option) (*desk, error) {
	d := &desk{
		catalog: catalog.FromConfig(cfg.Agents.List, catalog.Default(), log),
		hooks:   hooks.NewManager(log),
	}
	d.hooks.On(hooks.EventAny, "log", hooks.LogHandler(log))
	if n := hooks.RegisterConfig(d.hooks, cfg.Hooks); n > 0 {
		log.Info().Int("hooks", n).Msg("registered config hooks")
	}

	notifiers := notify.Multi{notify.NewLogNotifier(log), notify.NewHookNotifier(d.hooks)}
	if nc := cfg.Notify.NATS; nc != nil && nc.URL != "" {
		nn, err := notify.DialNATS(*nc, log)
		if err != nil {
			// Notifications are presentation-only; run without NATS.
			log.Warn().Err(err).Msg("NATS notifications disabled")
		} else {
			notifiers = append(notifiers, nn)
			d.closers = append(d.closers, nn)
		}
	}

	opts := []session.Option{
		session.WithResponseDelay(cfg.Session.ResponseDelay()),
		session.WithResponseTimeout(cfg.Session.ResponseTimeout()),
		session.WithPolicy(session.PolicyFromConfig(cfg.Attachments)),
		session.WithNotifier(notifiers),
	}
	opts = append(opts, extra...)

	d.sessions = session.NewManager(d.catalog, session.ManagerConfig{
		IdleTimeout: cfg.Session.IdleTimeout(),
		Options:     opts,
	}, log)
	d.sessions.SetHooks(d.hooks)

	if cfg.Session.Archive == "sqlite" {
		db, err := store.Open(p.Archive, log)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("opening transcript archive: %w", err)
		}
		d.sessions.SetArchiver(store.NewTranscriptStore(db))
		d.closers = append(d.closers, db)
	}
	return d, nil
}

// Close ends every live session, so each is archived, waits for shell
// hooks, then releases the archive and notifier connections.
func (d *desk) Close() error {
	if d.sessions != nil {
		d.sessions.CloseAll()
	}
	d.hooks.Wait()
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	return errors.Join(errs...)
}

// openArchive opens the transcript store for the transcripts commands.
func openArchive() (*store.TranscriptStore, io.Closer, error) {
	db, err := store.Open(paths.Archive, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening transcript archive: %w", err)
	}
	return store.NewTranscriptStore(db), db, nil
}
