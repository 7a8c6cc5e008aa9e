package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/competitor"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/rank"
)

var servePort int

// subjectLocks enforces at most one in-flight competitor run per
// subject: a concurrent delete-then-insert for the same subject would
// race.
type subjectLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newSubjectLocks() *subjectLocks {
	return &subjectLocks{held: make(map[string]struct{})}
}

func (l *subjectLocks) acquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[id]; ok {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *subjectLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		locks := newSubjectLocks()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/competitors/run", func(w http.ResponseWriter, req *http.Request) {
			var in subjectInput
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if in.Subject.PlaceID == "" {
				writeError(w, http.StatusBadRequest, "subject.place_id is required")
				return
			}

			if !locks.acquire(in.Subject.PlaceID) {
				writeError(w, http.StatusConflict, "a run for this subject is already in flight")
				return
			}
			defer locks.release(in.Subject.PlaceID)

			records, err := env.Selector.Run(req.Context(), in.Subject, in.Snapshot)
			if err != nil {
				zap.L().Error("competitor run failed",
					zap.String("subject", in.Subject.PlaceID),
					zap.Error(err),
				)
				writeError(w, http.StatusBadGateway, "competitor run failed")
				return
			}
			if records == nil {
				records = []competitor.Record{}
			}
			writeJSON(w, http.StatusOK, map[string]any{"competitors": records})
		})

		r.Get("/v1/competitors/{subjectID}", func(w http.ResponseWriter, req *http.Request) {
			subjectID := chi.URLParam(req, "subjectID")
			records, err := env.Store.BySubject(req.Context(), subjectID)
			if err != nil {
				zap.L().Error("competitor read failed", zap.String("subject", subjectID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "competitor read failed")
				return
			}
			if records == nil {
				records = []competitor.Record{}
			}
			writeJSON(w, http.StatusOK, map[string]any{"competitors": records})
		})

		r.Post("/v1/rank", func(w http.ResponseWriter, req *http.Request) {
			var in struct {
				subjectInput
				Query string `json:"query,omitempty"`
			}
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if in.Subject.PlaceID == "" {
				writeError(w, http.StatusBadRequest, "subject.place_id is required")
				return
			}

			var result *rank.Result
			var err error
			if in.Query != "" {
				result, err = env.Resolver.Evaluate(req.Context(), in.Subject, in.Query)
			} else {
				result, err = env.Resolver.Resolve(req.Context(), in.Subject)
			}
			if err != nil {
				zap.L().Error("rank resolution failed",
					zap.String("subject", in.Subject.PlaceID),
					zap.Error(err),
				)
				writeError(w, http.StatusBadGateway, "rank resolution failed")
				return
			}
			if result == nil {
				writeError(w, http.StatusUnprocessableEntity, "subject has no coordinates")
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown: the signal context is already canceled
		// here, so drain on a fresh deadline.
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			srv.Shutdown(drainCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
