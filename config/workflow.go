package config

import (
	"fmt"
	"strings"

	"content-review-cms/models"
)

// ReReviewPolicy decides what happens when a decision arrives for a job that
// already has one.
type ReReviewPolicy string

const (
	ReReviewReject ReReviewPolicy = "reject"
	ReReviewAllow  ReReviewPolicy = "allow"
)

type WorkflowConfig struct {
	ReReviewPolicy ReReviewPolicy
	// AutoReviewTypes may be handed to the automatic reviewer.
	AutoReviewTypes []models.ContentType
	// ReviewRequiredTypes go through moderation on publish; the rest are
	// published straight away.
	ReviewRequiredTypes []models.ContentType

	EventQueueSize      int
	AutoReviewWorkers   int
	AutoReviewQueueSize int
	BannedTerms         []string
}

// DefaultWorkflow moderates every content type by hand.
func DefaultWorkflow() WorkflowConfig {
	return WorkflowConfig{
		ReReviewPolicy:      ReReviewReject,
		ReviewRequiredTypes: append([]models.ContentType(nil), models.ContentTypes...),
		EventQueueSize:      256,
		AutoReviewWorkers:   2,
		AutoReviewQueueSize: 64,
	}
}

func (w WorkflowConfig) CanAutoReview(t models.ContentType) bool {
	return containsType(w.AutoReviewTypes, t)
}

func (w WorkflowConfig) RequiresReview(t models.ContentType) bool {
	return containsType(w.ReviewRequiredTypes, t)
}

func containsType(types []models.ContentType, t models.ContentType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func loadWorkflow() (WorkflowConfig, error) {
	w := DefaultWorkflow()

	switch policy := ReReviewPolicy(strings.ToLower(envString("REREVIEW_POLICY", string(ReReviewReject)))); policy {
	case ReReviewReject, ReReviewAllow:
		w.ReReviewPolicy = policy
	default:
		return WorkflowConfig{}, fmt.Errorf("REREVIEW_POLICY: unknown policy %q", policy)
	}

	var err error
	if w.AutoReviewTypes, err = envContentTypes("AUTO_REVIEW_TYPES", nil); err != nil {
		return WorkflowConfig{}, fmt.Errorf("AUTO_REVIEW_TYPES: %w", err)
	}
	if w.ReviewRequiredTypes, err = envContentTypes("REVIEW_REQUIRED_TYPES", w.ReviewRequiredTypes); err != nil {
		return WorkflowConfig{}, fmt.Errorf("REVIEW_REQUIRED_TYPES: %w", err)
	}

	w.EventQueueSize = envInt("EVENT_QUEUE_SIZE", w.EventQueueSize)
	w.AutoReviewWorkers = envInt("AUTO_REVIEW_WORKERS", w.AutoReviewWorkers)
	w.AutoReviewQueueSize = envInt("AUTO_REVIEW_QUEUE_SIZE", w.AutoReviewQueueSize)
	w.BannedTerms = envList("BANNED_TERMS")
	return w, nil
}
