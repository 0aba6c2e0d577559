package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/admin-service/core/service"
	"shop-admin/internal/mylogger"
)

const maxPointsBody = 1 << 10

type UsersHandler struct {
	usersService ports.IUsersService
	mylog        mylogger.Logger
}

func NewUsersHandler(mylog mylogger.Logger, usersService ports.IUsersService) *UsersHandler {
	return &UsersHandler{
		usersService: usersService,
		mylog:        mylog,
	}
}

func (uh *UsersHandler) GetUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := models.CallerFrom(r.Context())
		query := ParseUsersQuery(r.URL.Query())

		ctx, cancel := context.WithTimeout(r.Context(), WaitTime*time.Second)
		defer cancel()

		page, err := uh.usersService.GetUsers(ctx, caller, query)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, page)
	}
}

func (uh *UsersHandler) SaveUserPoints() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := uh.mylog.Action("save_user_points")
		caller := models.CallerFrom(r.Context())
		userId := r.PathValue("user_id")

		var req dto.SavePointsRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPointsBody)).Decode(&req); err != nil {
			mylog.Debug("failed to parse points request", "error", err.Error())
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON, points must be a whole number"))
			return
		}

		points, err := service.ParsePoints(req.Points.String())
		if err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), WaitTime*time.Second)
		defer cancel()

		if err := uh.usersService.SaveUserPoints(ctx, caller, userId, points); err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.SavePointsResponse{
			Msg:    "points updated",
			UserId: userId,
			Points: points,
		})
	}
}
