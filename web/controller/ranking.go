package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/web/middleware"
	"github.com/schoolhub/portal/web/service"
)

// RankingController serves the standings table. Mutations are open to every
// authenticated identity; see the design notes on the missing role check.
type RankingController struct {
	svc    *service.RankingService
	groups *service.GroupService
}

func NewRankingController(g *gin.RouterGroup, svc *service.RankingService, groups *service.GroupService, auth *service.AuthService) *RankingController {
	c := &RankingController{svc: svc, groups: groups}

	ranking := g.Group("/ranking")
	ranking.Use(middleware.TokenRequired(auth))
	{
		ranking.GET("", c.list)
		ranking.POST("", c.add)
		ranking.PUT("/:id", c.setPoints)
		ranking.DELETE("/:id", c.delete)
		ranking.GET("/groups", c.listGroups)
	}
	return c
}

func (c *RankingController) list(ctx *gin.Context) {
	entries, err := c.svc.List()
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entries)
}

type rankingReq struct {
	Group  string `json:"group" binding:"required"`
	Points int    `json:"points"`
}

func (c *RankingController) add(ctx *gin.Context) {
	var req rankingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "group required")
		return
	}
	entry, err := c.svc.Add(req.Group, req.Points)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, entry)
}

type pointsReq struct {
	Points int `json:"points"`
}

func (c *RankingController) setPoints(ctx *gin.Context) {
	var req pointsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "points required")
		return
	}
	entry, err := c.svc.SetPoints(ctx.Param("id"), req.Points)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entry)
}

func (c *RankingController) delete(ctx *gin.Context) {
	if err := c.svc.Delete(ctx.Param("id")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *RankingController) listGroups(ctx *gin.Context) {
	groups, err := c.groups.ListGroups()
	if err != nil {
		jsonError(ctx, err)
		return
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	ctx.JSON(http.StatusOK, names)
}
