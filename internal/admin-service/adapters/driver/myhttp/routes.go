package myhttp

import (
	"net/http"

	"shop-admin/internal/admin-service/adapters/driver/myhttp/handle"
	"shop-admin/internal/admin-service/adapters/driver/myhttp/middleware"
	"shop-admin/internal/admin-service/adapters/driver/myhttp/ws"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"
)

type Routes struct {
	JwtSecret    string
	UsersService ports.IUsersService
	NavService   ports.INavigationService
	Dispatcher   *ws.Dispatcher
	Health       handle.IHealthChecker
}

// NewHandler registers the admin API on a fresh mux and wraps it with
// request logging.
func NewHandler(mylog mylogger.Logger, rt Routes) http.Handler {
	mux := http.NewServeMux()

	usersHandler := handle.NewUsersHandler(mylog, rt.UsersService)
	navHandler := handle.NewNavHandler(mylog, rt.NavService)
	healthHandler := handle.NewHealthHandler(mylog, rt.Health)

	authMiddleware := middleware.NewAuthMiddleware(rt.JwtSecret)

	mux.Handle("GET /health", healthHandler.Health())
	mux.Handle("GET /admin/nav", authMiddleware.Wrap(navHandler.GetSidebar()))
	mux.Handle("GET /admin/users", authMiddleware.Wrap(usersHandler.GetUsers()))
	mux.Handle("POST /admin/users/{user_id}/points", authMiddleware.Wrap(usersHandler.SaveUserPoints()))
	mux.Handle("GET /admin/ws/users", authMiddleware.Wrap(rt.Dispatcher.UsersHandler()))

	return middleware.RequestLogger(mylog)(mux)
}
