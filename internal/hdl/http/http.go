package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ndavydov/auth-sessions/internal/auth/csrf"
	"github.com/ndavydov/auth-sessions/internal/auth/jwt"
	"github.com/ndavydov/auth-sessions/internal/ctrl"
	mid "github.com/ndavydov/auth-sessions/internal/hdl/http/middleware"
	"github.com/ndavydov/auth-sessions/internal/hdl/http/utils"
	"go.uber.org/zap"
)

type Handler struct {
	Router *chi.Mux
	mode   string
	au     jwt.Port
	cs     csrf.Port
	rc     mid.RateCounter
	srv    *http.Server
	ctrl   ctrl.AppCtrl
}

func New(mode string, au jwt.Port, cs csrf.Port, rc mid.RateCounter, ctrl ctrl.AppCtrl) *Handler {
	r := chi.NewRouter()
	return &Handler{
		Router: r,
		mode:   mode,
		au:     au,
		cs:     cs,
		rc:     rc,
		ctrl:   ctrl,
	}
}

func (h *Handler) Start(port int) {
	h.Router.Use(
		mid.Logger(zap.L()),
		middleware.StripSlashes,
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		mid.Prometheus,
		mid.OT,
	)

	h.RegisterAuthRoutes()
	h.RegisterUserRoutes()
	h.Router.Get(
		"/health", func(w http.ResponseWriter, r *http.Request) {
			utils.SuccessResponse(w, http.StatusOK, "OK")
		},
	)

	h.srv = &http.Server{
		Handler:      h.Router,
		Addr:         fmt.Sprintf(":%v", port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info(
		"Starting HTTP server",
		zap.String("addr", h.srv.Addr),
	)

	err := h.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		zap.L().Error("Server error", zap.Error(err))
	}
}

func (h *Handler) Close(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
