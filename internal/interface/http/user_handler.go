package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/conduit-identity/internal/application"
	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/token"
	"github.com/oksasatya/conduit-identity/internal/interface/middleware"
	"github.com/oksasatya/conduit-identity/pkg/response"
)

// UserUseCases is what the handler needs from the application layer.
type UserUseCases interface {
	Login(ctx context.Context, in application.LoginUser) (*application.UserDTO, error)
	Register(ctx context.Context, in application.NewUser) (*application.UserDTO, error)
	GetCurrentUser(ctx context.Context, info *token.TokenInfo) (*application.UserDTO, error)
	UpdateCurrentUser(ctx context.Context, info *token.TokenInfo, in application.UpdateUser) (*application.UserDTO, error)
}

type UserHandler struct {
	Svc UserUseCases
}

func NewUserHandler(svc UserUseCases) *UserHandler {
	return &UserHandler{Svc: svc}
}

var errNoIdentity = errors.New("no token info on request context")

type LoginRequest struct {
	User *struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	} `json:"user" binding:"required"`
}

type RegisterRequest struct {
	User *struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	} `json:"user" binding:"required"`
}

type UpdateRequest struct {
	User *struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	req, err := decoded[LoginRequest](c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var errs fieldErrors
	email, err := vo.NewEmail(req.User.Email)
	errs.add(err)
	pass, err := vo.NewPassword(req.User.Password)
	errs.add(err)
	if err := errs.err(); err != nil {
		_ = c.Error(err)
		return
	}

	dto, err := h.Svc.Login(c.Request.Context(), application.LoginUser{Email: email, Password: pass})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, dto)
}

func (h *UserHandler) Register(c *gin.Context) {
	req, err := decoded[RegisterRequest](c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var errs fieldErrors
	username, err := vo.NewUsername(req.User.Username)
	errs.add(err)
	email, err := vo.NewEmail(req.User.Email)
	errs.add(err)
	pass, err := vo.NewPassword(req.User.Password)
	errs.add(err)
	if err := errs.err(); err != nil {
		_ = c.Error(err)
		return
	}

	dto, err := h.Svc.Register(c.Request.Context(), application.NewUser{Username: username, Email: email, Password: pass})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusCreated, dto)
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	info, ok := middleware.TokenInfoFrom(c.Request.Context())
	if !ok {
		_ = c.Error(apperror.Unauthorized("Missing or malformed authorization header.", errNoIdentity))
		return
	}

	dto, err := h.Svc.GetCurrentUser(c.Request.Context(), info)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, dto)
}

// UpdateCurrentUser applies a partial profile update. The response echoes
// the presented token unless the username or email changed; then it carries
// a fresh token, since the old one names an identity that no longer exists.
func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	info, ok := middleware.TokenInfoFrom(c.Request.Context())
	if !ok {
		_ = c.Error(apperror.Unauthorized("Missing or malformed authorization header.", errNoIdentity))
		return
	}
	req, err := decoded[UpdateRequest](c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	in, err := toUpdateUser(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	dto, err := h.Svc.UpdateCurrentUser(c.Request.Context(), info, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, dto)
}

func toUpdateUser(req *UpdateRequest) (application.UpdateUser, error) {
	var (
		in   application.UpdateUser
		errs fieldErrors
		u    = req.User
	)
	if u.Username != nil {
		v, err := vo.NewUsername(*u.Username)
		errs.add(err)
		in.Username = &v
	}
	if u.Email != nil {
		v, err := vo.NewEmail(*u.Email)
		errs.add(err)
		in.Email = &v
	}
	if u.Password != nil {
		v, err := vo.NewPassword(*u.Password)
		errs.add(err)
		in.Password = &v
	}
	var err error
	in.Bio, err = vo.OptionalBio(u.Bio)
	errs.add(err)
	in.Image, err = vo.OptionalImage(u.Image)
	errs.add(err)
	return in, errs.err()
}
