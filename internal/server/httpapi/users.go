package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

// UserHandler serves the account and session routes.
type UserHandler struct {
	users     *services.UserService
	uploadDir string
	logger    logging.Logger
}

func NewUserHandler(us *services.UserService, uploadDir string, logger logging.Logger) *UserHandler {
	return &UserHandler{users: us, uploadDir: uploadDir, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := parseMultipart(r); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	files := &staged{dir: h.uploadDir}
	defer files.cleanup()

	avatar, err := files.file(r, "avatar")
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}
	cover, err := files.file(r, "coverImage")
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	u, err := h.users.Register(ctx, services.RegisterInput{
		DisplayName:    r.FormValue("displayName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, u, "user registered")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	u, pair, err := h.users.Login(ctx, services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, loginResponse{
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in")
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var token string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(ctx, w, h.logger, err)
			return
		}
		token = req.RefreshToken
	}

	pair, err := h.users.Refresh(ctx, token)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, pair, "access token refreshed")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	if err := h.users.Logout(ctx, u.ID); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	clearSessionCookies(w)
	writeJSON(w, http.StatusOK, struct{}{}, "logged out")
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	if err := h.users.ChangePassword(ctx, u.ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{}, "password changed")
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	cur, err := h.users.CurrentUser(ctx, u.ID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cur, "current user")
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	updated, err := h.users.UpdateAccount(ctx, u.ID, req.DisplayName, req.Email)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated, "account updated")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.users.UpdateAvatar)
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.users.UpdateCoverImage)
}

type imageUpdater func(ctx context.Context, userID, localPath string) (*models.User, error)

func (h *UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	if err := parseMultipart(r); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	files := &staged{dir: h.uploadDir}
	defer files.cleanup()

	path, err := files.file(r, field)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	updated, err := update(ctx, u.ID, path)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated, field+" updated")
}
