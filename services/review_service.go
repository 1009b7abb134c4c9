package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content-review-cms/models"
	"content-review-cms/repositories"

	"gorm.io/gorm"
)

// AutoReviewQueue accepts jobs assigned to models.AutoReviewer.
type AutoReviewQueue interface {
	Enqueue(job models.ReviewJob) error
}

type ReviewService interface {
	// AssignReviewer opens a review job for content. It fails with
	// *models.ErrorConflict, carrying the open job, while a previous job for
	// the same content is still NOT_REVIEWED.
	AssignReviewer(ctx context.Context, content models.ContentIdentity, allowAutoReview bool) (*models.ReviewJobInfo, error)
	GetReviewJob(ctx context.Context, id uint) (*models.ReviewJobInfo, error)
	ListReviewJobs(ctx context.Context, reviewerID int64, statuses ...models.ReviewStatus) ([]models.ReviewJobInfo, error)
	// FindOpenJob returns the NOT_REVIEWED job of content, or nil.
	FindOpenJob(ctx context.Context, content models.ContentIdentity) (*models.ReviewJob, error)
}

type reviewService struct {
	jobRepo   repositories.ReviewJobRepository
	allocator *ReviewerAllocator
	autoQueue AutoReviewQueue
	locks     *ContentLocks
	clock     Clock
	logger    *slog.Logger
}

func NewReviewService(
	jobRepo repositories.ReviewJobRepository,
	allocator *ReviewerAllocator,
	autoQueue AutoReviewQueue,
	locks *ContentLocks,
	clock Clock,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		jobRepo:   jobRepo,
		allocator: allocator,
		autoQueue: autoQueue,
		locks:     locks,
		clock:     clock,
		logger:    logger,
	}
}

func (s *reviewService) AssignReviewer(ctx context.Context, content models.ContentIdentity, allowAutoReview bool) (*models.ReviewJobInfo, error) {
	if !content.ContentType.Valid() {
		return nil, &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "unknown content type " + string(content.ContentType)}
	}

	unlock := s.locks.Lock(content.String())
	defer unlock()

	mark := models.ReviewMarkNormal
	previous, err := s.jobRepo.FindLatestByContent(ctx, content)
	switch {
	case err == nil:
		if !previous.Status.IsReviewed() {
			return nil, notReviewedConflict(previous)
		}
		mark = models.ReviewMarkReport
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	reviewer, err := s.allocator.Allocate(ctx, content.ContentType, allowAutoReview)
	if err != nil {
		return nil, err
	}

	job := &models.ReviewJob{
		ContentID:    content.ContentID,
		ContentType:  content.ContentType,
		ReviewerID:   reviewer,
		Status:       models.ReviewStatusNotReviewed,
		Mark:         mark,
		AssignedTime: s.clock.Now(),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.releaseQuietly(reviewer, content.ContentType)
		if errors.Is(err, repositories.ErrDuplicate) {
			// Another process won the race past the in-memory lock.
			if open, findErr := s.FindOpenJob(ctx, content); findErr == nil && open != nil {
				return nil, notReviewedConflict(open)
			}
			return nil, &models.ErrorConflict{Message: "content " + content.String() + " already has an open review job"}
		}
		return nil, err
	}

	s.logger.Info("review job assigned",
		"event", "review_job_assigned",
		"module", "services",
		"job_id", job.ID,
		"content", content.String(),
		"reviewer_id", reviewer,
		"mark", mark,
	)

	if reviewer == models.AutoReviewer && s.autoQueue != nil {
		if err := s.autoQueue.Enqueue(*job); err != nil {
			// The job stays NOT_REVIEWED and is picked up again on restart.
			s.logger.Warn("auto review queue rejected job",
				"event", "auto_review_enqueue_failed",
				"module", "services",
				"job_id", job.ID,
				"error", err.Error(),
			)
		}
	}

	info := job.Info()
	return &info, nil
}

func (s *reviewService) releaseQuietly(reviewer int64, contentType models.ContentType) {
	if err := s.allocator.Release(context.Background(), reviewer, contentType); err != nil {
		s.logger.Error("release after failed assignment",
			"event", "reviewer_release_failed",
			"module", "services",
			"reviewer_id", reviewer,
			"error", err.Error(),
		)
	}
}

func (s *reviewService) GetReviewJob(ctx context.Context, id uint) (*models.ReviewJobInfo, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(fmt.Sprintf("review job %d not found", id))
		}
		return nil, err
	}
	info := job.Info()
	return &info, nil
}

func (s *reviewService) ListReviewJobs(ctx context.Context, reviewerID int64, statuses ...models.ReviewStatus) ([]models.ReviewJobInfo, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "unknown review status " + string(st)}
		}
	}
	jobs, err := s.jobRepo.FindByReviewer(ctx, reviewerID, statuses...)
	if err != nil {
		return nil, err
	}
	infos := make([]models.ReviewJobInfo, 0, len(jobs))
	for _, job := range jobs {
		infos = append(infos, job.Info())
	}
	return infos, nil
}

func (s *reviewService) FindOpenJob(ctx context.Context, content models.ContentIdentity) (*models.ReviewJob, error) {
	job, err := s.jobRepo.FindLatestByContent(ctx, content)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if job.Status.IsReviewed() {
		return nil, nil
	}
	return job, nil
}

func notReviewedConflict(job *models.ReviewJob) error {
	info := job.Info()
	return &models.ErrorConflict{
		Message: fmt.Sprintf("content %s is not reviewed yet (job %d)", job.Content(), job.ID),
		Job:     &info,
	}
}
