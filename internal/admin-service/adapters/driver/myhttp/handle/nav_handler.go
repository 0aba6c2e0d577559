package handle

import (
	"net/http"

	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"
)

type NavHandler struct {
	navService ports.INavigationService
	mylog      mylogger.Logger
}

func NewNavHandler(mylog mylogger.Logger, navService ports.INavigationService) *NavHandler {
	return &NavHandler{
		navService: navService,
		mylog:      mylog,
	}
}

func (nh *NavHandler) GetSidebar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sidebar, err := nh.navService.Sidebar(models.CallerFrom(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, sidebar)
	}
}
