package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/web/entity"
	"github.com/schoolhub/portal/web/middleware"
	"github.com/schoolhub/portal/web/service"
)

type RegistrationController struct {
	auth *service.AuthService
}

func NewRegistrationController(g *gin.RouterGroup, auth *service.AuthService) *RegistrationController {
	c := &RegistrationController{auth: auth}

	reg := g.Group("/registration")
	{
		reg.POST("/register", c.register)
		reg.POST("/login", c.login)
		reg.POST("/verify", middleware.TokenRequired(auth), c.verify)
	}
	return c
}

type credentialsReq struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (c *RegistrationController) register(ctx *gin.Context) {
	var req credentialsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "login and password required")
		return
	}
	user, err := c.auth.Register(req.Login, req.Password)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, entity.NewUserView(user))
}

func (c *RegistrationController) login(ctx *gin.Context) {
	var req credentialsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "login and password required")
		return
	}
	token, user, err := c.auth.Login(req.Login, req.Password)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entity.TokenResponse{
		Token: token,
		Role:  user.Role,
		Login: user.Login,
	})
}

func (c *RegistrationController) verify(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	ctx.JSON(http.StatusOK, entity.VerifyResponse{
		Login: identity.Login,
		Role:  identity.Role,
		Group: identity.Group,
	})
}
