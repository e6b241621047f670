package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/auth"
	"github.com/ndavydov/auth-sessions/internal/config"
	"github.com/ndavydov/auth-sessions/internal/ctrl"
	"github.com/ndavydov/auth-sessions/internal/dto"
	"github.com/ndavydov/auth-sessions/internal/hdl"
	mid "github.com/ndavydov/auth-sessions/internal/hdl/http/middleware"
	"github.com/ndavydov/auth-sessions/internal/hdl/http/utils"
	"github.com/ndavydov/auth-sessions/internal/sessions"
	"go.uber.org/zap"
)

func (h *Handler) RegisterAuthRoutes() {
	h.Router.With(mid.DeviceIssue).Get("/auth/csrf", h.issueCSRF)
	h.Router.With(
		mid.RateLimit(h.rc), mid.CSRF(h.cs, h.mode), mid.Device,
	).Post("/auth/signup", h.signup)
	h.Router.With(
		mid.RateLimit(h.rc), mid.CSRF(h.cs, h.mode), mid.Device,
	).Post("/auth/signin", h.signin)
	h.Router.With(
		mid.RateLimit(h.rc), mid.CSRF(h.cs, h.mode), mid.Device,
	).Post("/auth/refresh", h.refresh)
	h.Router.With(
		mid.RateLimit(h.rc), mid.CSRF(h.cs, h.mode), mid.Device, mid.Auth(h.au, h.ctrl),
	).Post("/auth/signout", h.signout)
}

// issueCSRF godoc
//
//	@Summary		Issue a csrf token
//	@Description	Set the signed csrf cookie and a device id cookie if absent
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	dto.CSRFResponse
//	@Failure		500	{object}	utils.ErrorsResponse
//	@Router			/auth/csrf [get]
func (h *Handler) issueCSRF(w http.ResponseWriter, r *http.Request) {
	token, cookieVal, err := h.cs.NewToken()
	if err != nil {
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	utils.SetCSRFCookie(w, h.mode, cookieVal)
	utils.SuccessResponse(w, http.StatusOK, dto.CSRFResponse{Token: token})
}

// signup godoc
//
//	@Summary		Create an account
//	@Description	Create the user, open a session for the device and set JWT cookies
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.SignUpRequest	true	"Signup payload"
//	@Success		201		{object}	models.User
//	@Failure		400		{object}	utils.ErrorsResponse
//	@Failure		409		{object}	utils.ErrorsResponse
//	@Failure		500		{object}	utils.ErrorsResponse
//	@Router			/auth/signup [post]
func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	req := &dto.SignUpRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	user, pair, err := h.ctrl.SignUp(r.Context(), &d, req)
	if err != nil {
		switch {
		case errors.Is(err, ctrl.ErrAlreadyExists):
			utils.ErrResponse(w, http.StatusConflict, err)
		case errors.Is(err, ctrl.ErrDeviceIDRequired):
			utils.ErrResponse(w, http.StatusBadRequest, err)
		default:
			utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		}
		return
	}

	utils.SetAuthCookies(w, pair.Access, pair.Refresh, h.au.GetAccessTime(), h.au.GetRefreshTime())
	utils.SuccessResponse(w, http.StatusCreated, user)
}

// signin godoc
//
//	@Summary		Authenticate using email & password
//	@Description	Verify credentials, open a session for the device and set JWT cookies
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.EmailAndPasswordRequest	true	"Login credentials"
//	@Success		200		{object}	models.User
//	@Failure		400		{object}	utils.ErrorsResponse
//	@Failure		401		{object}	utils.ErrorsResponse
//	@Failure		404		{object}	utils.ErrorsResponse
//	@Failure		500		{object}	utils.ErrorsResponse
//	@Router			/auth/signin [post]
func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	req := &dto.EmailAndPasswordRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	user, pair, err := h.ctrl.SignIn(r.Context(), &d, req)
	if err != nil {
		switch {
		case errors.Is(err, ctrl.ErrNotFound):
			utils.ErrResponse(w, http.StatusNotFound, err)
		case errors.Is(err, auth.ErrInvalidCredentials):
			utils.ErrResponse(w, http.StatusUnauthorized, err)
		case errors.Is(err, ctrl.ErrDeviceIDRequired):
			utils.ErrResponse(w, http.StatusBadRequest, err)
		default:
			utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		}
		return
	}

	utils.SetAuthCookies(w, pair.Access, pair.Refresh, h.au.GetAccessTime(), h.au.GetRefreshTime())
	utils.SuccessResponse(w, http.StatusOK, user)
}

// refresh godoc
//
//	@Summary		Refresh JWT tokens
//	@Description	Validate the refresh cookie, rotate the session secret and set new cookies
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	"Successfully refreshed tokens (sets cookies)"
//	@Failure		400	{object}	utils.ErrorsResponse
//	@Failure		401	{object}	utils.ErrorsResponse
//	@Failure		500	{object}	utils.ErrorsResponse
//	@Router			/auth/refresh [post]
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	cookie, err := r.Cookie(config.RefreshCookieName)
	if err != nil {
		utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrUnauthorized)
		return
	}

	_, pair, err := h.ctrl.Refresh(
		r.Context(), &d, &dto.RefreshRequest{
			Refresh: cookie.Value,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, ctrl.ErrDeviceIDRequired):
			utils.ErrResponse(w, http.StatusBadRequest, err)
		case ctrl.HasKind(err, ctrl.KindAuthenticationFailed):
			utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrUnauthorized)
		default:
			utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		}
		return
	}

	utils.SetAuthCookies(w, pair.Access, pair.Refresh, h.au.GetAccessTime(), h.au.GetRefreshTime())
	utils.StatusResponse(w, http.StatusOK)
}

// signout godoc
//
//	@Summary		Sign out the current device
//	@Description	Delete the device's session and clear auth cookies
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	"Session deleted, cookies cleared"
//	@Failure		404	{object}	utils.ErrorsResponse	"session not found"
//	@Failure		500	{object}	utils.ErrorsResponse	"internal error"
//	@Router			/auth/signout [post]
func (h *Handler) signout(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value(config.UidKey).(uuid.UUID)
	if !ok {
		zap.L().Error(
			hdl.ErrFailedToGetUUID.Error(),
			zap.Any("uid", r.Context().Value(config.UidKey)),
		)
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	if err := h.ctrl.SignOut(r.Context(), uid, d.ID); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			utils.ErrResponse(w, http.StatusNotFound, err)
			return
		}

		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	utils.ClearAuthCookies(w)
	utils.StatusResponse(w, http.StatusOK)
}
