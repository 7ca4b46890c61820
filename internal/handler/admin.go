package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/exam-seat-allocator/internal/middleware"
	"github.com/iliyamo/exam-seat-allocator/internal/repository"
)

// AdminHandler runs the fixed account and trigger statements.  Every
// successful change is written to the log with the operator who made it.
type AdminHandler struct {
	Admin *repository.AdminRepo
}

func NewAdminHandler(a *repository.AdminRepo) *AdminHandler {
	return &AdminHandler{Admin: a}
}

type createDBUserReq struct {
	User     string `json:"user"     validate:"required"`
	Host     string `json:"host"`
	Password string `json:"password" validate:"required"`
}

type grantReq struct {
	Level string `json:"level" validate:"required,oneof=read_only read_write"`
}

// hostParam defaults the account host to "%".
func hostParam(c echo.Context) string {
	if h := c.QueryParam("host"); h != "" {
		return h
	}
	return "%"
}

func audit(c echo.Context, action, target string) {
	uid, _ := middleware.UserID(c)
	log.Info().Uint64("operator_id", uid).Str("action", action).Str("target", target).Msg("db admin")
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Admin.ListUsers(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /v1/admin/users.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createDBUserReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.Host == "" {
		req.Host = "%"
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Admin.CreateUser(ctx, req.User, req.Host, req.Password); err != nil {
		return writeError(c, err)
	}
	audit(c, "create user", req.User+"@"+req.Host)
	return c.JSON(http.StatusCreated, repository.DBAccount{User: req.User, Host: req.Host})
}

// DropUser handles DELETE /v1/admin/users/:user?host=.
func (h *AdminHandler) DropUser(c echo.Context) error {
	user, host := c.Param("user"), hostParam(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Admin.DropUser(ctx, user, host); err != nil {
		return writeError(c, err)
	}
	audit(c, "drop user", user+"@"+host)
	return c.NoContent(http.StatusNoContent)
}

// Grant handles POST /v1/admin/users/:user/grant?host=.
func (h *AdminHandler) Grant(c echo.Context) error {
	var req grantReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	user, host := c.Param("user"), hostParam(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Admin.Grant(ctx, user, host, req.Level); err != nil {
		return writeError(c, err)
	}
	audit(c, "grant "+req.Level, user+"@"+host)
	return c.NoContent(http.StatusNoContent)
}

// Revoke handles POST /v1/admin/users/:user/revoke?host=.
func (h *AdminHandler) Revoke(c echo.Context) error {
	user, host := c.Param("user"), hostParam(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Admin.Revoke(ctx, user, host); err != nil {
		return writeError(c, err)
	}
	audit(c, "revoke", user+"@"+host)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListGrants(c echo.Context) error {
	user, host := c.Param("user"), hostParam(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	grants, err := h.Admin.ListGrants(ctx, user, host)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "host": host, "grants": grants})
}

func (h *AdminHandler) ListTriggers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Admin.ListTriggers(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) ShowTrigger(c echo.Context) error {
	name := c.Param("name")
	ctx, cancel := reqCtx(c)
	defer cancel()
	stmt, err := h.Admin.ShowTrigger(ctx, name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"name": name, "statement": stmt})
}

func (h *AdminHandler) DropTrigger(c echo.Context) error {
	name := c.Param("name")
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Admin.DropTrigger(ctx, name); err != nil {
		return writeError(c, err)
	}
	audit(c, "drop trigger", name)
	return c.NoContent(http.StatusNoContent)
}
