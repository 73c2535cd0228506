package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"longevity/internal/auth"
	"longevity/internal/config"
	"longevity/internal/fasting"
	"longevity/internal/gateway"
	"longevity/internal/protocol"
	"longevity/internal/service"
	"longevity/internal/storage"
	"longevity/internal/store"
)

// publisherDrainTimeout bounds how long exit waits for queued gateway events
const publisherDrainTimeout = 5 * time.Second

// now is the clock handed to the managers
var now = time.Now

// env is everything a command needs, opened per invocation
type env struct {
	cfg       *config.Config
	db        *store.DB
	tracker   *service.Tracker
	client    *gateway.Client
	publisher *gateway.Publisher
	sync      *service.SyncService
	log       zerolog.Logger
}

func withEnv(cmd *cobra.Command, run func(*env) error) error {
	e, err := openEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()
	return run(e)
}

func openEnv(out io.Writer) (*env, error) {
	cfg, err := loadConfig(out)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel()
	if logLevel != "" {
		if level, err = zerolog.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	path := cfg.Storage.Path
	if dbPath != "" {
		path = dbPath
	}
	if cfg.Storage.Backend == config.BackendMemory {
		path = store.MemoryPath
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	e := &env{cfg: cfg, db: db, log: log}

	if cfg.UsesGateway() {
		if err := e.connectGateway(); err != nil {
			db.Close()
			return nil, err
		}
	}

	var backend storage.Backend = db
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = storage.NewMemoryBackend()
	case config.BackendRemote:
		backend = e.client
	}
	adapter := storage.NewAdapter(backend, log)

	fastingOpts := []fasting.Option{fasting.WithClock(now)}
	protocolOpts := []protocol.Option{protocol.WithClock(now)}
	if e.publisher != nil {
		fastingOpts = append(fastingOpts, fasting.WithPublisher(e.publisher))
		protocolOpts = append(protocolOpts, protocol.WithPublisher(e.publisher))
	}
	if cfg.Protocol.TemplatesFile != "" {
		templates, err := protocol.LoadTemplates(cfg.Protocol.TemplatesFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Protocol.TemplatesFile).Msg("Ignoring protocol templates")
		} else {
			protocolOpts = append(protocolOpts, protocol.WithTemplates(templates...))
		}
	}

	f := fasting.NewManager(adapter, cfg.Fasting.DefaultTargetHours, fastingOpts...)
	p := protocol.NewManager(adapter, protocolOpts...)
	scores := service.NewScoreService(db, p, cfg.Profile).WithClock(now)
	e.tracker = service.NewTracker(scores, f, p, log)

	return e, nil
}

// loadConfig falls back to defaults when no config exists yet, leaving an
// example file behind for the user to edit
func loadConfig(out io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		dir, _ := config.GetConfigDir()
		fmt.Fprintf(out, "Created example config at %s/config.json\n", dir)
		defaults := config.DefaultConfig()
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		dir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("config validation failed: %w (edit %s/config.json)", err, dir)
	}
	return cfg, nil
}

func (e *env) connectGateway() error {
	gw := e.cfg.Gateway

	var cached *oauth2.Token
	if stored, err := e.db.GetAuth(); err == nil {
		cached = &oauth2.Token{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
			TokenType:    stored.TokenType,
			Expiry:       stored.ExpiresAt,
		}
	} else if !errors.Is(err, store.ErrNoAuth) {
		return fmt.Errorf("checking auth: %w", err)
	}

	ts, err := auth.New(context.Background(), auth.Config{
		Token:        gw.Token,
		ClientID:     gw.ClientID,
		ClientSecret: gw.ClientSecret,
		TokenURL:     gw.TokenURL,
	}, cached, func(tok *oauth2.Token) error {
		return e.db.SaveAuth(&store.Auth{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			TokenType:    tok.TokenType,
			ExpiresAt:    tok.Expiry,
		})
	})
	if errors.Is(err, auth.ErrNoCredentials) {
		e.log.Debug().Msg("No gateway credentials, sending unauthenticated requests")
		ts = nil
	} else if err != nil {
		return fmt.Errorf("gateway auth: %w", err)
	}

	var opts []gateway.ClientOption
	if d := gw.Timeout(); d > 0 {
		opts = append(opts, gateway.WithTimeout(d))
	}
	e.client = gateway.NewClient(gw.BaseURL, ts, e.log, opts...)
	e.sync = service.NewSyncService(e.client, e.db, e.log)
	if gw.Enabled {
		e.publisher = gateway.NewPublisher(e.client, gateway.DefaultBuffer, e.log)
	}
	return nil
}

func (e *env) close() {
	if e.publisher != nil {
		e.publisher.Close(publisherDrainTimeout)
	}
	if e.db != nil {
		e.db.Close()
	}
}
