package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RegisterRoutes mounts the engine endpoints under /v1 and the operational
// endpoints at the root.
func RegisterRoutes(r *gin.Engine, handlers *Handlers) {
	v1 := r.Group("/v1")
	{
		v1.POST("/schedule", handlers.HandleSchedule)
		v1.POST("/compare", handlers.HandleCompare)
		v1.POST("/deadlock", handlers.HandleDeadlock)
		v1.POST("/safety", handlers.HandleSafety)
	}
	r.GET("/healthz", handlers.HandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// NewRouter returns a gin engine with recovery and every route registered.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, NewHandlers())
	return r
}

// Serve runs the API on addr until ctx is cancelled, then shuts down,
// giving in-flight requests up to five seconds to finish.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logrus.Infof("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
