package handlers

import (
	"strconv"

	"content-review-cms/helper"
	"content-review-cms/models"
	"content-review-cms/services"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	staffService services.StaffService
	Helper       *helper.HTTPHelper
}

func NewStaffHandler(staffService services.StaffService, httpHelper *helper.HTTPHelper) *StaffHandler {
	return &StaffHandler{staffService: staffService, Helper: httpHelper}
}

func (h *StaffHandler) AddStaff(c *gin.Context) {
	var req models.AddStaffRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	staff, err := h.staffService.AddStaff(c.Request.Context(), req.UserID, req.Type)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Staff added", staff)
}

func (h *StaffHandler) ListStaff(c *gin.Context) {
	staffType := models.StaffType(c.DefaultQuery("type", string(models.StaffReviewer)))

	staff, err := h.staffService.ListActive(c.Request.Context(), staffType)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Staff loaded", staff)
}

func (h *StaffHandler) Deactivate(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid user ID", h.Helper.EmptyJsonMap())
		return
	}

	staff, err := h.staffService.Deactivate(c.Request.Context(), userID)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Staff deactivated", staff)
}
