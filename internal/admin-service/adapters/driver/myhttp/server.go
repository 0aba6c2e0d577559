package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"shop-admin/internal/admin-service/adapters/driven/bm"
	"shop-admin/internal/admin-service/adapters/driven/cache"
	"shop-admin/internal/admin-service/adapters/driven/db"
	"shop-admin/internal/admin-service/adapters/driver/myhttp/ws"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/admin-service/core/service"
	"shop-admin/internal/config"
	"shop-admin/internal/mylogger"
)

var ErrServerClosed = errors.New("Server closed")

const WaitTime = 10

type Server struct {
	cfg        *config.Config
	srv        *http.Server
	mylog      mylogger.Logger
	db         ports.IDB
	cache      ports.IUsersViewCache
	broker     *bm.RabbitMQ
	dispatcher *ws.Dispatcher
	ctx        context.Context
	appCtx     context.Context

	// mu guards the fields Run assigns while Stop may be reading them.
	mu      sync.Mutex
	stopped bool
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
	}
}

// Run connects the backing stores, wires the handlers and starts listening.
// It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	if err := s.adopt(func() {}); err != nil {
		return err
	}

	if err := s.initializeDatabase(); err != nil {
		mylog.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	mylog.Action("db_connected").Info("Successful database connection")

	if err := s.initializeCache(); err != nil {
		mylog.Action("cache_init_failed").Error("Failed to initialize users view cache", err)
		return err
	}

	if s.cfg.RabbitMq.Enabled {
		if err := s.initializeBroker(); err != nil {
			mylog.Action("rabbitmq_connection_failed").Error("Failed to connect to RabbitMQ", err)
			return err
		}
		mylog.Action("rabbitmq_connected").Info("Successful RabbitMQ connection")
	}

	handler := s.Configure()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", s.cfg.Srv.AdminServicePort),
		Handler:           handler,
		ReadHeaderTimeout: WaitTime * time.Second,
	}
	if err := s.adopt(func() { s.srv = srv }); err != nil {
		return err
	}

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.AdminServicePort, "cache", s.cfg.Cache.Backend)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	s.mylog.Action("graceful_shutdown_started").Info("Shutting down HTTP server...")

	var errs []error

	if s.dispatcher != nil {
		s.dispatcher.Close()
	}

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down HTTP server gracefully", err)
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if s.broker != nil {
		if err := s.broker.Close(); err != nil {
			s.mylog.Action("rabbitmq_close_failed").Error("Failed to close RabbitMQ", err)
			errs = append(errs, fmt.Errorf("rabbitmq close: %w", err))
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.mylog.Action("cache_close_failed").Error("Failed to close users view cache", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Action("db_close_failed").Error("Failed to close database", err)
			errs = append(errs, fmt.Errorf("db close: %w", err))
		} else {
			s.mylog.Action("db_closed").Info("Database closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.mylog.Action("graceful_shutdown_completed").Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure builds the services on top of the initialized stores and returns
// the routed handler.
func (s *Server) Configure() http.Handler {
	guard := service.NewAccessGuard()
	usersRepo := db.NewUsersRepo(s.db)
	dispatcher := ws.NewDispatcher(s.mylog, guard)
	if err := s.adopt(func() { s.dispatcher = dispatcher }); err != nil {
		// Run gives up at the next adopt; no client can attach meanwhile
		dispatcher.Close()
	}

	publishers := []ports.IUsersEventPublisher{dispatcher}
	if s.broker != nil {
		publishers = append(publishers, bm.NewPublisher(s.broker, s.mylog))
	}

	usersService := service.NewUsersService(s.ctx, s.mylog, guard, usersRepo, s.cache, service.NewFanoutPublisher(publishers...))
	navService := service.NewNavigationService(s.mylog, guard)

	if s.broker != nil {
		consumer := bm.NewConsumer(s.ctx, s.broker, s.cache, dispatcher, s.mylog)
		if err := consumer.SubscribeForMessages(); err != nil {
			// other instances' writes then only show up after the cache TTL
			s.mylog.Action("subscribe_failed").Error("Failed to subscribe for users view changes", err)
		}
	}

	return NewHandler(s.mylog, Routes{
		JwtSecret:    s.cfg.App.JwtSecret,
		UsersService: usersService,
		NavService:   navService,
		Dispatcher:   dispatcher,
		Health:       s.db,
	})
}

func (s *Server) initializeDatabase() error {
	db, err := db.Start(s.ctx, s.cfg.DB, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := s.adopt(func() { s.db = db }); err != nil {
		_ = db.Close()
		return err
	}
	return nil
}

func (s *Server) initializeCache() error {
	var viewCache ports.IUsersViewCache
	switch s.cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisCache, err := cache.NewRedis(s.ctx, s.cfg.Redis, s.cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		viewCache = redisCache
	default:
		viewCache = cache.NewMemory(s.cfg.Cache.TTL)
	}

	if err := s.adopt(func() { s.cache = viewCache }); err != nil {
		_ = viewCache.Close()
		return err
	}
	return nil
}

func (s *Server) initializeBroker() error {
	broker, err := bm.New(s.appCtx, s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	if err := s.adopt(func() { s.broker = broker }); err != nil {
		_ = broker.Close()
		return err
	}
	return nil
}

// adopt runs set under the lock unless Stop has already run, in which case
// the caller owns the resource and must release it.
func (s *Server) adopt(set func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrServerClosed
	}
	set()
	return nil
}
