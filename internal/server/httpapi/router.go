package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services groups what the router needs from the service layer.
type Services struct {
	Users         *services.UserService
	Channels      *services.ChannelService
	Authenticator Authenticator
}

// RouterConfig holds transport settings for NewRouter.
type RouterConfig struct {
	UploadDir  string
	CORSOrigin string
	// MaxUploadBytes caps multipart bodies. Zero means 16 MiB.
	MaxUploadBytes int64
}

func NewRouter(svc Services, cfg RouterConfig, logger logging.Logger) http.Handler {
	log := logger.With("module", "http")

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigin))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct{}{}, "OK")
	})

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBody
	}
	jsonBody := LimitBody(maxJSONBody, log)
	uploadBody := LimitBody(maxUpload, log)

	userHandler := NewUserHandler(svc.Users, cfg.UploadDir, log)
	channelHandler := NewChannelHandler(svc.Channels, log)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(uploadBody).Post("/register", userHandler.Register)
		r.With(jsonBody).Post("/login", userHandler.Login)
		r.With(jsonBody).Post("/refresh-token", userHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(svc.Authenticator, log))

			r.Post("/logout", userHandler.Logout)
			r.With(jsonBody).Post("/change-password", userHandler.ChangePassword)
			r.Get("/current-user", userHandler.CurrentUser)
			r.With(jsonBody).Patch("/update-account", userHandler.UpdateAccount)
			r.With(uploadBody).Patch("/avatar", userHandler.UpdateAvatar)
			r.With(uploadBody).Patch("/cover-image", userHandler.UpdateCoverImage)

			r.Get("/c/{username}", channelHandler.Profile)

			r.Get("/history", channelHandler.WatchHistory)
			r.Post("/history/{videoID}", channelHandler.RecordWatch)

			r.Get("/subscriptions", channelHandler.Subscriptions)
			r.Post("/subscriptions/{channelID}", channelHandler.Subscribe)
			r.Delete("/subscriptions/{channelID}", channelHandler.Unsubscribe)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, nil, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, nil, "method not allowed")
	})

	return r
}

// Server runs an HTTP listener until its context is cancelled.
type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, logger logging.Logger) *Server {
	return &Server{address: address, handler: handler, logger: logger.With("module", "http_server")}
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
