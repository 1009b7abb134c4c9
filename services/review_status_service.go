package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content-review-cms/config"
	"content-review-cms/events"
	"content-review-cms/models"
	"content-review-cms/repositories"

	"gorm.io/gorm"
)

type ReviewStatusService interface {
	// MakeReview records a pass or reject decision on a job and announces
	// it. Content metadata follows asynchronously.
	MakeReview(ctx context.Context, jobID uint, operatorID int64, passed bool, reason string) (*models.ReviewJobInfo, error)
	// CancelReview withdraws a NOT_REVIEWED job.
	CancelReview(ctx context.Context, jobID uint, operatorID int64, reason string) (*models.ReviewJobInfo, error)
}

type reviewStatusService struct {
	jobRepo   repositories.ReviewJobRepository
	allocator *ReviewerAllocator
	bus       *events.Bus
	locks     *ContentLocks
	policy    config.ReReviewPolicy
	clock     Clock
	logger    *slog.Logger
}

func NewReviewStatusService(
	jobRepo repositories.ReviewJobRepository,
	allocator *ReviewerAllocator,
	bus *events.Bus,
	locks *ContentLocks,
	policy config.ReReviewPolicy,
	clock Clock,
	logger *slog.Logger,
) ReviewStatusService {
	return &reviewStatusService{
		jobRepo:   jobRepo,
		allocator: allocator,
		bus:       bus,
		locks:     locks,
		policy:    policy,
		clock:     clock,
		logger:    logger,
	}
}

func (s *reviewStatusService) MakeReview(ctx context.Context, jobID uint, operatorID int64, passed bool, reason string) (*models.ReviewJobInfo, error) {
	return s.transition(ctx, jobID, func(job models.ReviewJob) (models.ReviewJob, error) {
		if job.Status.IsReviewed() && s.policy != config.ReReviewAllow {
			return job, &models.ErrorBadRequest{
				Code:    models.CodeReviewed,
				Message: fmt.Sprintf("review job %d is already %s", job.ID, job.Status),
			}
		}
		at := s.clock.Now()
		if passed {
			return job.ReviewPass(operatorID, at), nil
		}
		return job.ReviewReject(operatorID, reason, at), nil
	})
}

func (s *reviewStatusService) CancelReview(ctx context.Context, jobID uint, operatorID int64, reason string) (*models.ReviewJobInfo, error) {
	return s.transition(ctx, jobID, func(job models.ReviewJob) (models.ReviewJob, error) {
		if job.Status.IsReviewed() {
			return job, &models.ErrorBadRequest{
				Code:    models.CodeReviewed,
				Message: fmt.Sprintf("review job %d is already %s", job.ID, job.Status),
			}
		}
		return job.Cancel(operatorID, reason, s.clock.Now()), nil
	})
}

// transition loads the job, applies decide, persists the result and
// publishes the state change. Reviewer load is given back only when the job
// leaves NOT_REVIEWED, so repeated decisions never release twice.
func (s *reviewStatusService) transition(ctx context.Context, jobID uint, decide func(models.ReviewJob) (models.ReviewJob, error)) (*models.ReviewJobInfo, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(fmt.Sprintf("review job %d not found", jobID))
		}
		return nil, err
	}

	unlock := s.locks.Lock(job.Content().String())
	defer unlock()

	// Reload under the lock; a concurrent decision may have landed.
	job, err = s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	previous := job.Status
	updated, err := decide(*job)
	if err != nil {
		return nil, err
	}

	if err := s.jobRepo.Save(ctx, &updated); err != nil {
		return nil, err
	}
	if previous == models.ReviewStatusNotReviewed {
		if err := s.allocator.Release(ctx, updated.ReviewerID, updated.ContentType); err != nil {
			s.logger.Error("reviewer release failed",
				"event", "reviewer_release_failed",
				"module", "services",
				"job_id", updated.ID,
				"reviewer_id", updated.ReviewerID,
				"error", err.Error(),
			)
		}
	}

	s.logger.Info("review job decided",
		"event", "review_job_decided",
		"module", "services",
		"job_id", updated.ID,
		"content", updated.Content().String(),
		"previous_status", previous,
		"status", updated.Status,
	)

	change := models.ReviewStateChangeEvent{
		Job:            updated,
		PreviousStatus: previous,
		CurrentStatus:  updated.Status,
	}
	envelope := events.NewEnvelope(events.TopicReviewStateChanged, s.clock.Now(), change)
	if err := s.bus.Publish(ctx, events.TopicReviewStateChanged, envelope); err != nil {
		// The decision is durable; metadata will lag until the next change.
		s.logger.Error("review state change not published",
			"event", "review_state_publish_failed",
			"module", "services",
			"job_id", updated.ID,
			"error", err.Error(),
		)
	}

	info := updated.Info()
	return &info, nil
}
