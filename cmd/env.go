package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/category"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/competitor"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/db"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/rank"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/source"
	"github.com/ibrhmmrana/hunter2.0-sub001/pkg/places"
	"github.com/ibrhmmrana/hunter2.0-sub001/pkg/querygen"
)

// engineEnv wires the engine's collaborators for one command.
type engineEnv struct {
	Source   *source.Source
	Store    competitor.Store
	Selector *competitor.Selector
	Resolver *rank.Resolver

	closers []func() error
}

func (e *engineEnv) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			zap.L().Warn("env close", zap.Error(err))
		}
	}
}

// initEnv validates config for the given mode and builds the engine.
// The store is only opened for modes that persist.
func initEnv(ctx context.Context, mode string) (*engineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	if cfg.Engine.CategoryOverridesPath != "" {
		if err := category.LoadOverrides(cfg.Engine.CategoryOverridesPath); err != nil {
			return nil, err
		}
	}

	var opts []places.Option
	if cfg.Google.BaseURL != "" {
		opts = append(opts, places.WithBaseURL(cfg.Google.BaseURL))
	}
	src := source.New(places.NewClient(cfg.Google.Key, opts...), cfg.Google.RatePerSecond)

	env := &engineEnv{Source: src}

	if mode == "compete" || mode == "serve" {
		store, err := initStore(ctx, env)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Store = store
		env.Selector = competitor.NewSelector(src, store)
	}

	var gen querygen.Generator
	if cfg.Anthropic.Key != "" {
		gen = querygen.NewClaudeGenerator(cfg.Anthropic.Key, cfg.Anthropic.Model)
	}
	env.Resolver = rank.NewResolver(src, gen)

	return env, nil
}

func initStore(ctx context.Context, env *engineEnv) (competitor.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := competitor.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, st.Close)
		if err := st.Migrate(ctx); err != nil {
			return nil, eris.Wrap(err, "migrate store")
		}
		zap.L().Info("using sqlite store", zap.String("path", cfg.Store.SQLitePath))
		return st, nil

	case "postgres":
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, func() error { pool.Close(); return nil })
		st := competitor.NewPostgresStore(pool)
		if err := st.Migrate(ctx); err != nil {
			return nil, eris.Wrap(err, "migrate store")
		}
		zap.L().Info("using postgres store")
		return st, nil

	default:
		return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// subjectInput is the on-disk / on-wire shape of a run request.
type subjectInput struct {
	Subject  model.Business  `json:"subject"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
}

// readSubjectFile loads a subject description from a JSON file.
func readSubjectFile(path string) (*subjectInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read subject file %s", path)
	}

	var in subjectInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, eris.Wrap(err, "parse subject file")
	}
	if in.Subject.PlaceID == "" {
		return nil, eris.New("subject file: subject.place_id is required")
	}
	return &in, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
