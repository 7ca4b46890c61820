package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/handler"
	"github.com/iliyamo/exam-seat-allocator/internal/middleware"
	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// RegisterAdmin wires the database administration endpoints.  They sit
// under /v1/admin and need the ADMIN role on top of the protected group.
func RegisterAdmin(g *echo.Group, a *handler.AdminHandler) {
	adm := g.Group("/admin", middleware.RequireRole(model.RoleAdmin))

	adm.GET("/users", a.ListUsers)
	adm.POST("/users", a.CreateUser)
	adm.DELETE("/users/:user", a.DropUser)
	adm.POST("/users/:user/grant", a.Grant)
	adm.POST("/users/:user/revoke", a.Revoke)
	adm.GET("/users/:user/grants", a.ListGrants)

	adm.GET("/triggers", a.ListTriggers)
	adm.GET("/triggers/:name", a.ShowTrigger)
	adm.DELETE("/triggers/:name", a.DropTrigger)
}
