package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	httputil "gstrecon/pkg/http"
	"gstrecon/pkg/logger"
	"gstrecon/pkg/metrics"
)

const (
	readinessTimeout = 2 * time.Second

	DatabaseCheck = "database"
	KafkaCheck    = "kafka"

	checkOK    = "ok"
	checkError = "error"
)

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	log    *logger.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, log *logger.Logger) *HealthHandler {
	h := &HealthHandler{checks: make(map[string]Check), log: log}
	h.AddCheck(DatabaseCheck, func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	return h
}

// AddCheck registers a dependency that /ready must see healthy.
func (h *HealthHandler) AddCheck(name string, check Check) {
	h.checks[name] = check
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready runs every check concurrently under one deadline.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		healthy = true
		results = make(map[string]string, len(h.checks))
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				healthy = false
				results[name] = checkError
				h.log.Error("Readiness check failed", "check", name, "error", err)
				return
			}
			results[name] = checkOK
		}()
	}
	wg.Wait()

	if !healthy {
		h.write(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Checks: results})
		return
	}
	h.write(w, http.StatusOK, HealthResponse{Status: "ready", Checks: results})
}

func (h *HealthHandler) write(w http.ResponseWriter, status int, body HealthResponse) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}
