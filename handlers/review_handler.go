package handlers

import (
	"strconv"
	"strings"

	"content-review-cms/helper"
	"content-review-cms/middleware"
	"content-review-cms/models"
	"content-review-cms/services"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService services.ReviewService
	statusService services.ReviewStatusService
	allocator     *services.ReviewerAllocator
	Helper        *helper.HTTPHelper
}

func NewReviewHandler(
	reviewService services.ReviewService,
	statusService services.ReviewStatusService,
	allocator *services.ReviewerAllocator,
	httpHelper *helper.HTTPHelper,
) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		statusService: statusService,
		allocator:     allocator,
		Helper:        httpHelper,
	}
}

// ListReviews lists the caller's jobs. Admins may pass reviewer_id, including
// the automatic reviewer's id. status takes a comma separated list.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	reviewer := user.ID
	if raw := c.Query("reviewer_id"); raw != "" && user.Role == models.RoleAdmin {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.Helper.SendBadRequest(c, "Invalid reviewer ID", h.Helper.EmptyJsonMap())
			return
		}
		reviewer = id
	}

	var statuses []models.ReviewStatus
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			statuses = append(statuses, models.ReviewStatus(strings.ToUpper(raw)))
		}
	}

	jobs, err := h.reviewService.ListReviewJobs(c.Request.Context(), reviewer, statuses...)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review jobs loaded", jobs)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid review job ID", h.Helper.EmptyJsonMap())
		return
	}

	job, err := h.reviewService.GetReviewJob(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review job loaded", job)
}

func (h *ReviewHandler) Pass(c *gin.Context) {
	var req models.ReviewDecisionRequest
	if c.Request.ContentLength > 0 && !h.Helper.BindAndValidate(c, &req) {
		return
	}
	h.decide(c, func(id uint, operator int64) (*models.ReviewJobInfo, error) {
		return h.statusService.MakeReview(c.Request.Context(), id, operator, true, req.Reason)
	})
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	var req models.RejectReviewRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}
	h.decide(c, func(id uint, operator int64) (*models.ReviewJobInfo, error) {
		return h.statusService.MakeReview(c.Request.Context(), id, operator, false, req.Reason)
	})
}

func (h *ReviewHandler) Cancel(c *gin.Context) {
	var req models.ReviewDecisionRequest
	if c.Request.ContentLength > 0 && !h.Helper.BindAndValidate(c, &req) {
		return
	}
	h.decide(c, func(id uint, operator int64) (*models.ReviewJobInfo, error) {
		return h.statusService.CancelReview(c.Request.Context(), id, operator, req.Reason)
	})
}

func (h *ReviewHandler) decide(c *gin.Context, apply func(id uint, operator int64) (*models.ReviewJobInfo, error)) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid review job ID", h.Helper.EmptyJsonMap())
		return
	}

	job, err := apply(id, user.ID)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review recorded", job)
}

func (h *ReviewHandler) Loads(c *gin.Context) {
	loads, err := h.allocator.Loads(c.Request.Context())
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	out := make(map[string]int, len(loads))
	for id, load := range loads {
		out[strconv.FormatInt(id, 10)] = load
	}
	h.Helper.SendSuccess(c, "Reviewer loads", out)
}
