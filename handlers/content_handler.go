package handlers

import (
	"content-review-cms/helper"
	"content-review-cms/middleware"
	"content-review-cms/models"
	"content-review-cms/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService services.ContentService
	Helper         *helper.HTTPHelper
}

func NewContentHandler(contentService services.ContentService, httpHelper *helper.HTTPHelper) *ContentHandler {
	return &ContentHandler{contentService: contentService, Helper: httpHelper}
}

func (h *ContentHandler) content(c *gin.Context) (models.ContentIdentity, bool) {
	content, err := parseContentParam(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid content", err.Error())
		return content, false
	}
	return content, true
}

func (h *ContentHandler) GetMetadata(c *gin.Context) {
	content, ok := h.content(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	metadata, err := h.contentService.GetMetadata(c.Request.Context(), content)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}
	if metadata.UserID != user.ID && !user.Role.IsStaff() {
		h.Helper.SendNotFoundError(c, "content "+content.String()+" not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Content loaded", metadata)
}

func (h *ContentHandler) UpdateAccess(c *gin.Context) {
	content, ok := h.content(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	var req models.UpdateAccessRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	metadata, err := h.contentService.UpdateAccess(c.Request.Context(), content, user.ID, req.AccessAuthType, req.Password)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Access updated", metadata)
}

func (h *ContentHandler) CheckPermit(c *gin.Context) {
	content, ok := h.content(c)
	if !ok {
		return
	}

	permit, _, err := h.contentService.CheckAccess(c.Request.Context(), content, accessCredentials(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Permit checked", permit)
}

func (h *ContentHandler) History(c *gin.Context) {
	content, ok := h.content(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	metadata, err := h.contentService.GetMetadata(c.Request.Context(), content)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}
	if metadata.UserID != user.ID && !user.Role.IsStaff() {
		h.Helper.SendNotFoundError(c, "content "+content.String()+" not found", h.Helper.EmptyJsonMap())
		return
	}

	entries, err := h.contentService.History(c.Request.Context(), content)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "History loaded", entries)
}

func (h *ContentHandler) Forbid(c *gin.Context) {
	content, ok := h.content(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	var req models.ReviewDecisionRequest
	if c.Request.ContentLength > 0 && !h.Helper.BindAndValidate(c, &req) {
		return
	}

	metadata, err := h.contentService.Forbid(c.Request.Context(), content, user.ID, req.Reason)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Content forbidden", metadata)
}

func (h *ContentHandler) Restore(c *gin.Context) {
	content, ok := h.content(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	result, err := h.contentService.Restore(c.Request.Context(), content, user.ID)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Content restored", result)
}
