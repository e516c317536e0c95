package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/web/middleware"
	"github.com/schoolhub/portal/web/service"
)

type AdminToolsController struct {
	users  *service.UserAdminService
	groups *service.GroupService
}

func NewAdminToolsController(g *gin.RouterGroup, users *service.UserAdminService, groups *service.GroupService, auth *service.AuthService) *AdminToolsController {
	c := &AdminToolsController{users: users, groups: groups}

	admin := g.Group("/admin-tools")
	admin.Use(middleware.TokenRequired(auth), middleware.RoleRequired(model.RoleAdmin))
	{
		admin.GET("", c.list)
		admin.POST("/create", c.create)
		admin.GET("/groups", c.listGroups)
		admin.POST("/groups", c.createGroup)
		admin.DELETE("/groups/:name", c.deleteGroup)
		admin.GET("/logs", c.logs)
		admin.GET("/:id", c.get)
		admin.PUT("/:id", c.update)
		admin.DELETE("/:id", c.delete)
		admin.PATCH("/:id/reset-password", c.resetPassword)
	}
	return c
}

func (c *AdminToolsController) list(ctx *gin.Context) {
	users, err := c.users.ListUsers()
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (c *AdminToolsController) get(ctx *gin.Context) {
	user, err := c.users.GetUser(ctx.Param("id"))
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

type createUserReq struct {
	Login    string     `json:"login" binding:"required"`
	Password string     `json:"password" binding:"required"`
	Role     model.Role `json:"role" binding:"required"`
	Group    string     `json:"group"`
}

func (c *AdminToolsController) create(ctx *gin.Context) {
	var req createUserReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "login, password and role required")
		return
	}
	user, err := c.users.CreateUser(req.Login, req.Password, req.Role, req.Group)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

type updateUserReq struct {
	Role  model.Role `json:"role" binding:"required"`
	Group string     `json:"group"`
}

func (c *AdminToolsController) update(ctx *gin.Context) {
	var req updateUserReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "role required")
		return
	}
	user, err := c.users.UpdateUser(ctx.Param("id"), req.Role, req.Group)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

type passwordReq struct {
	Password string `json:"password" binding:"required"`
}

func (c *AdminToolsController) resetPassword(ctx *gin.Context) {
	var req passwordReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "password required")
		return
	}
	if err := c.users.ResetPassword(ctx.Param("id"), req.Password); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *AdminToolsController) delete(ctx *gin.Context) {
	if err := c.users.DeleteUser(ctx.Param("id")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *AdminToolsController) listGroups(ctx *gin.Context) {
	groups, err := c.groups.ListGroups()
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, groups)
}

type createGroupReq struct {
	Name string `json:"name" binding:"required"`
}

func (c *AdminToolsController) createGroup(ctx *gin.Context) {
	var req createGroupReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "name required")
		return
	}
	group, err := c.groups.CreateGroup(req.Name)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, group)
}

func (c *AdminToolsController) deleteGroup(ctx *gin.Context) {
	if err := c.groups.DeleteGroup(ctx.Param("name")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *AdminToolsController) logs(ctx *gin.Context) {
	count, err := strconv.Atoi(ctx.DefaultQuery("count", "100"))
	if err != nil || count < 1 {
		count = 100
	}
	level := ctx.DefaultQuery("level", "INFO")
	ctx.JSON(http.StatusOK, logger.GetLogs(count, level))
}
