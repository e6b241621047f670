package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/config"
	"github.com/ndavydov/auth-sessions/internal/ctrl"
	"github.com/ndavydov/auth-sessions/internal/dto"
	"github.com/ndavydov/auth-sessions/internal/hdl"
	mid "github.com/ndavydov/auth-sessions/internal/hdl/http/middleware"
	"github.com/ndavydov/auth-sessions/internal/hdl/http/utils"
	"go.uber.org/zap"
)

func (h *Handler) RegisterUserRoutes() {
	h.Router.Post("/users/exists", h.existsUser)
	h.Router.With(mid.Device, mid.Auth(h.au, h.ctrl)).Get("/users/me", h.getMe)
}

// existsUser godoc
//
//	@Summary		Check if a user exists by email
//	@Description	Returns whether the email is taken
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.CheckEmailRequest	true	"Email payload"
//	@Success		200		{object}	dto.ExistsUserResponse
//	@Failure		500		{object}	utils.ErrorsResponse	"internal error"
//	@Router			/users/exists [post]
func (h *Handler) existsUser(w http.ResponseWriter, r *http.Request) {
	req := &dto.CheckEmailRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	res, err := h.ctrl.IsUserExist(r.Context(), req.Email)
	if err != nil {
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}

// getMe godoc
//
//	@Summary		Retrieve current user profile
//	@Description	Returns the authenticated user's profile
//	@Tags			User
//	@Produce		json
//	@Success		200	{object}	models.User
//	@Failure		401	{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		404	{object}	utils.ErrorsResponse	"user not found"
//	@Failure		500	{object}	utils.ErrorsResponse	"internal error"
//	@Router			/users/me [get]
func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value(config.UidKey).(uuid.UUID)
	if uid == uuid.Nil || !ok {
		zap.L().Error(
			hdl.ErrFailedToGetUUID.Error(),
			zap.Any("uid", r.Context().Value(config.UidKey)),
		)
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	res, err := h.ctrl.GetUserByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ctrl.ErrNotFound) {
			utils.ErrResponse(w, http.StatusNotFound, err)
			return
		}
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res.Sanitized())
}
