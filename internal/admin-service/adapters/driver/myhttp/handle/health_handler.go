package handle

import (
	"context"
	"net/http"
	"time"

	"shop-admin/internal/mylogger"
)

type IHealthChecker interface {
	IsAlive(ctx context.Context) error
}

type HealthHandler struct {
	db    IHealthChecker
	mylog mylogger.Logger
}

func NewHealthHandler(mylog mylogger.Logger, db IHealthChecker) *HealthHandler {
	return &HealthHandler{
		db:    db,
		mylog: mylog,
	}
}

func (hh *HealthHandler) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := hh.db.IsAlive(ctx); err != nil {
			hh.mylog.Action("health").Error("database is not alive", err)
			JsonError(w, http.StatusServiceUnavailable, errUnavailable)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
