package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/web/middleware"
	"github.com/schoolhub/portal/web/service"
)

// ContentController serves one content kind. The same controller is mounted
// three times (news, announcements, materials); only materials additionally
// register the nested article routes.
type ContentController struct {
	svc *service.ContentService
}

func NewContentController(g *gin.RouterGroup, svc *service.ContentService, auth *service.AuthService) *ContentController {
	c := &ContentController{svc: svc}

	kind := string(svc.Kind())
	editors := middleware.RoleRequired(model.RoleTeacher, model.RoleAdmin)

	content := g.Group("/" + kind)
	{
		reads := content.Group("", middleware.TokenOptional(auth))
		{
			reads.GET("/read", c.list)
			reads.GET("/:id", c.detail)
		}

		writes := content.Group("", middleware.TokenRequired(auth), editors)
		{
			writes.POST("/create_"+kind, c.create)
			writes.PUT("/:id", c.update)
			writes.DELETE("/:id", c.remove)
			writes.POST("/:id/upload_image", c.uploadImage)
			writes.DELETE("/:id/delete_image", c.deleteImage)
			writes.POST("/:id", c.addFiles)
			writes.DELETE("/:id/:filename", c.deleteFile)
		}
	}

	if svc.Kind() == model.KindMaterials {
		c.registerArticleRoutes(g, auth)
	}
	return c
}

func (c *ContentController) list(ctx *gin.Context) {
	views, err := c.svc.List(middleware.GetIdentity(ctx))
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, views)
}

func (c *ContentController) detail(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	detail, err := c.svc.Get(middleware.GetIdentity(ctx), id)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (c *ContentController) create(ctx *gin.Context) {
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

	entry, err := c.svc.Create(input, uploads.image, uploads.files)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, entry)
}

func (c *ContentController) update(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	var req entryUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		jsonBadRequest(ctx, "title and audience required")
		return
	}
	entry, err := c.svc.Update(id, req.toInput())
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entry)
}

func (c *ContentController) remove(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	if err := c.svc.Delete(id); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *ContentController) uploadImage(ctx *gin.Context) {
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

	entry, err := c.svc.UploadImage(id, *uploads.image)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entry)
}

func (c *ContentController) deleteImage(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	if err := c.svc.DeleteImage(id); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (c *ContentController) addFiles(ctx *gin.Context) {
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

	entry, err := c.svc.AddFiles(id, uploads.files)
	if err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entry)
}

func (c *ContentController) deleteFile(ctx *gin.Context) {
	id, ok := entryId(ctx)
	if !ok {
		return
	}
	if err := c.svc.DeleteFile(id, ctx.Param("filename")); err != nil {
		jsonError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
