package handlers

import (
	"content-review-cms/helper"
	"content-review-cms/middleware"
	"content-review-cms/models"
	"content-review-cms/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService services.ArticleService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, httpHelper *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, Helper: httpHelper}
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.CreateArticleRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	article, err := h.articleService.CreateArticle(c.Request.Context(), req, uint(user.ID))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article created", article)
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}
	if err := h.Helper.Validate.Struct(params); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	// Writers only list their own articles
	if !user.Role.IsStaff() {
		params.AuthorID = uint(user.ID)
	}
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 10
	}

	articles, total, err := h.articleService.GetArticles(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", map[string]interface{}{
		"articles": articles,
		"paging":   h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	view, err := h.articleService.GetArticle(c.Request.Context(), id, user)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", view)
}

func (h *ArticleHandler) PublishArticle(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.PublishRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	result, err := h.articleService.PublishArticle(c.Request.Context(), id, req, uint(user.ID))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article submitted", result)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.articleService.DeleteArticle(c.Request.Context(), id, user); err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article deleted successfully", h.Helper.EmptyJsonMap())
}

// GetPublicArticle serves readers, anonymous or not. Denials list every
// failing reason so the client can ask for what is missing.
func (h *ArticleHandler) GetPublicArticle(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	view, permit, err := h.articleService.ReadArticle(c.Request.Context(), id, accessCredentials(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}
	if !permit.Permitted {
		h.Helper.SendForbiddenError(c, "Access denied", permit)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", view)
}
