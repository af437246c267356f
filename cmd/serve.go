package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/config"
	"github.com/sells-group/briefing-cli/internal/leadstore"
	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/internal/pipeline"
	"github.com/sells-group/briefing-cli/internal/store"
)

const (
	serviceName    = "briefing-cli"
	serviceVersion = "1.0.0"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for briefing requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initBriefing(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router := newRouter(env.Pipeline, env.Runs, env.Leads, cfg)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown: let in-flight briefing runs finish, they can
		// hold a completion call open for tens of seconds.
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// briefingRunner is the slice of the pipeline the webhook handler needs.
type briefingRunner interface {
	Run(ctx context.Context, req model.BriefingRequest) (*model.BriefingResponse, error)
}

// newRouter builds the HTTP surface: the briefing webhook plus health,
// config, and leads read endpoints.
func newRouter(p briefingRunner, runs store.Store, leads leadstore.Store, appCfg *config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: appCfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/webhook", handleWebhook(p))
	r.Get("/health", handleHealth(runs))
	r.Get("/config", handleConfig(appCfg))
	r.Get("/leads", handleLeads(leads))

	return r
}

// handleWebhook runs the briefing pipeline synchronously for one lead. The
// two client-visible failures map to 400 with a detail body; everything else
// the pipeline absorbs into a degraded 200 response.
func handleWebhook(p briefingRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.BriefingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := p.Run(r.Context(), req)
		if err != nil {
			if errors.Is(err, pipeline.ErrInvalidRequest) || errors.Is(err, pipeline.ErrNoIntelligence) {
				writeDetail(w, http.StatusBadRequest, err.Error())
				return
			}
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHealth(runs store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{
			"status":  "healthy",
			"service": serviceName,
			"version": serviceVersion,
		}
		if runs != nil {
			if err := runs.Ping(r.Context()); err != nil {
				zap.L().Warn("health: run store unreachable", zap.Error(err))
				body["status"] = "degraded"
				body["store"] = "unreachable"
			}
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// handleConfig reports which backends are configured without echoing any
// credential material.
func handleConfig(appCfg *config.Config) http.HandlerFunc {
	type configStatus struct {
		AnthropicConfigured  bool   `json:"anthropic_configured"`
		NewsConfigured       bool   `json:"news_configured"`
		SalesforceConfigured bool   `json:"salesforce_configured"`
		NotionRegistry       bool   `json:"notion_registry"`
		LeadBackend          string `json:"lead_backend"`
		StoreDriver          string `json:"store_driver"`
		Model                string `json:"model"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, configStatus{
			AnthropicConfigured:  appCfg.Anthropic.IsConfigured(),
			NewsConfigured:       appCfg.News.IsConfigured(),
			SalesforceConfigured: appCfg.Salesforce.IsConfigured(),
			NotionRegistry:       appCfg.Registry.NotionConfigured(),
			LeadBackend:          appCfg.Leads.Backend,
			StoreDriver:          appCfg.Store.Driver,
			Model:                appCfg.Anthropic.Model,
		})
	}
}

func handleLeads(leads leadstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := leads.List(r.Context())
		if err != nil {
			zap.L().Error("leads endpoint: list failed", zap.Error(err))
			writeDetail(w, http.StatusInternalServerError, "failed to list leads")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total": len(records),
			"leads": records,
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDetail mirrors the {"detail": ...} error body shape webhook clients
// already parse.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
