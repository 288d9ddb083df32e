package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/handlers/admin"
	"secretboard/internal/http/handlers/middlewares/auth"
	"secretboard/internal/http/handlers/middlewares/compress"
	"secretboard/internal/http/handlers/middlewares/logger"
	"secretboard/internal/http/handlers/middlewares/metrics"
	"secretboard/internal/http/handlers/middlewares/ratelimit"
	"secretboard/internal/http/handlers/middlewares/tracking"
	"secretboard/internal/http/handlers/posts/create_post"
	"secretboard/internal/http/handlers/posts/delete_post"
	"secretboard/internal/http/handlers/posts/list_posts"
	"secretboard/internal/http/handlers/system/ping"
	"secretboard/internal/http/httputils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type ServiceBoard interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, content, userName, trackingID string) (models.Post, error)
	Delete(ctx context.Context, userName string, id int64) (bool, error)
	Ping(ctx context.Context) error
}

type OneTimeTokens interface {
	Issue(ctx context.Context, userName string) (string, error)
	VerifyAndConsume(ctx context.Context, userName, supplied string) (bool, error)
}

// Deps - всё, что нужно серверу для обработки запросов
type Deps struct {
	Board    ServiceBoard
	Tokens   OneTimeTokens
	Tracking tracking.Manager
	Users    auth.Authenticator
	Renderer list_posts.PageRenderer
	Limiter  *ratelimit.Limiter
}

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	log        zerolog.Logger
	deps       Deps
	addr       string
}

func NewServer(log zerolog.Logger, addr string, deps Deps) (*Server, error) {
	if addr == "" {
		return nil, errors.New("server address cannot be empty")
	}
	if deps.Board == nil || deps.Tokens == nil || deps.Tracking == nil || deps.Users == nil || deps.Renderer == nil {
		return nil, errors.New("server dependencies are incomplete")
	}

	s := &Server{
		router: mux.NewRouter(),
		log:    log.With().Str("component", "http").Logger(),
		deps:   deps,
		addr:   addr,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(logger.MiddlewareRequestID())
	s.router.Use(logger.MiddlewareLogging(s.log))
	s.router.Use(metrics.MiddlewareMetrics())
	s.router.Use(compress.MiddlewareCompressing())

	/*
		Public routes (without auth)
	*/
	s.router.HandleFunc("/ping", ping.HandlerPing(s.deps.Board, s.log)).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc(httputils.PathLogout, auth.HandlerLogout()).Methods(http.MethodGet)

	/*
		Protected routes (with auth)
	*/
	authRouter := s.router.NewRoute().Subrouter()
	authRouter.Use(auth.MiddlewareAuth(s.deps.Users, s.log))
	authRouter.Use(tracking.MiddlewareTracking(s.deps.Tracking, s.log))

	limited := ratelimit.MiddlewareRateLimit(s.deps.Limiter, s.log)

	authRouter.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httputils.RedirectToPosts(w)
	}).Methods(http.MethodGet) // 303
	authRouter.HandleFunc(httputils.PathPosts,
		list_posts.HandlerListPosts(s.deps.Board, s.deps.Tokens, s.deps.Renderer, s.log)).Methods(http.MethodGet) // 200
	authRouter.Handle(httputils.PathPosts,
		limited(create_post.HandlerCreatePost(s.deps.Board, s.deps.Tokens, s.log))).Methods(http.MethodPost) // 303
	// любой метод, кроме POST, получает 400 внутри обработчика
	authRouter.Handle(httputils.PathPostsDelete,
		limited(delete_post.HandlerDeletePost(s.deps.Board, s.log))) // 303
	authRouter.HandleFunc(httputils.PathAdminPosts,
		admin.HandlerGetAll(s.deps.Board, s.log)).Methods(http.MethodGet) // 200 / 403
}

// Handler отдаёт роутер целиком (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info().Str("address", s.addr).Msg("Starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
