package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/web/middleware"
	"github.com/schoolhub/portal/web/service"
)

// Nested article routes, mounted on /materials/:id/articles only.
func (c *ContentController) registerArticleRoutes(g *gin.RouterGroup, auth *service.AuthService) {
	editors := middleware.RoleRequired(model.RoleTeacher, model.RoleAdmin)

	articles := g.Group("/" + string(c.svc.Kind()) + "/:id/articles")
	{
		articles.GET("/:articleId", middleware.TokenOptional(auth), c.articleDetail)

		writes := articles.Group("", middleware.TokenRequired(auth), editors)
		{
			writes.POST("", c.createArticle)
			writes.PUT("/:articleId", c.updateArticle)
			writes.DELETE("/:articleId", c.removeArticle)
			writes.POST("/:articleId/upload_image", c.uploadArticleImage)
			writes.DELETE("/:articleId/delete_image", c.deleteArticleImage)
			writes.POST("/:articleId", c.addArticleFiles)
			writes.DELETE("/:articleId/:filename", c.deleteArticleFile)
		}
	}
}

func (c *ContentController) articleDetail(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	detail, err := c.svc.GetArticle(middleware.GetIdentity(ctx), id, ctx.Param("articleId"))
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (c *ContentController) createArticle(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	input, err := entryInputFromForm(ctx)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	uploads, err := parseUploads(ctx)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	defer uploads.Close()

	article, err := c.svc.CreateArticle(id, input, uploads.image, uploads.files)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, article)
}

func (c *ContentController) updateArticle(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	var req entryUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "title and audience required")
		return
	}
	article, err := c.svc.UpdateArticle(id, ctx.Param("articleId"), req.toInput())
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, article)
}

func (c *ContentController) removeArticle(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	if err := c.svc.DeleteArticle(id, ctx.Param("articleId")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *ContentController) uploadArticleImage(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	uploads, err := parseUploads(ctx)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	defer uploads.Close()
	if uploads.image == nil {
		jsonBadRequest(ctx, "image part required")
		return
	}

	article, err := c.svc.UploadArticleImage(id, ctx.Param("articleId"), *uploads.image)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, article)
}

func (c *ContentController) deleteArticleImage(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	if err := c.svc.DeleteArticleImage(id, ctx.Param("articleId")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *ContentController) addArticleFiles(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	uploads, err := parseUploads(ctx)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	defer uploads.Close()

	article, err := c.svc.AddArticleFiles(id, ctx.Param("articleId"), uploads.files)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, article)
}

func (c *ContentController) deleteArticleFile(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	if err := c.svc.DeleteArticleFile(id, ctx.Param("articleId"), ctx.Param("filename")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
