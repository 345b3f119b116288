package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

type AccountHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAccountHandler(authService *service.AuthService, userService *service.UserService) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		userService: userService,
	}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, err := h.userService.Me(ctx, ctxkeys.User(ctx), ctxkeys.SessionID(ctx))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, identity)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in validation.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user.Identity())
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in validation.ChangePasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.userService.ChangePassword(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nil)
}

// AttachAvatar takes the {url, key} handle returned by the upload endpoint.
func (h *AccountHandler) AttachAvatar(w http.ResponseWriter, r *http.Request) {
	var asset model.Asset
	if err := decodeJSON(w, r, &asset); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.userService.AttachAvatar(r.Context(), ctxkeys.User(r.Context()), &asset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user.Identity())
}

func (h *AccountHandler) DetachAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.DetachAvatar(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user.Identity())
}

// DeleteAccount expects {"confirm": "DELETE MY ACCOUNT"}. userId defaults to
// the caller.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID  string `json:"userId"`
		Confirm string `json:"confirm"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	caller := ctxkeys.User(r.Context())
	target := body.UserID
	if target == "" && caller != nil {
		target = caller.ID
	}

	err := h.userService.DeleteAccount(r.Context(), caller, target, body.Confirm)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.authService.ClearJWTCookie(w)
	slog.Info("account deleted via api", "user_id", caller.ID)
	respondOK(w, nil)
}
