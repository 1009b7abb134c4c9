package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"content-review-cms/models"
	"content-review-cms/repositories"
)

var (
	ErrQueueFull       = errors.New("auto review queue full")
	ErrReviewerStopped = errors.New("auto reviewer stopped")
)

// ContentBodyProvider returns the text the automatic reviewer inspects.
type ContentBodyProvider interface {
	ContentBody(ctx context.Context, contentID int64) (string, error)
}

// AutoReviewer decides jobs assigned to models.AutoReviewer on a pool of
// worker goroutines.
type AutoReviewer struct {
	policy    ModerationPolicy
	decider   ReviewStatusService
	jobs      chan models.ReviewJob
	workers   int
	logger    *slog.Logger
	providers map[models.ContentType]ContentBodyProvider

	mu        sync.RWMutex
	stopped   bool
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewAutoReviewer(workers, queueSize int, policy ModerationPolicy, decider ReviewStatusService, logger *slog.Logger) *AutoReviewer {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 128
	}
	return &AutoReviewer{
		policy:    policy,
		decider:   decider,
		jobs:      make(chan models.ReviewJob, queueSize),
		workers:   workers,
		logger:    logger,
		providers: make(map[models.ContentType]ContentBodyProvider),
	}
}

// RegisterProvider must be called before Start.
func (r *AutoReviewer) RegisterProvider(contentType models.ContentType, provider ContentBodyProvider) {
	r.providers[contentType] = provider
}

// Start launches the workers. They exit on Stop or when ctx is cancelled.
func (r *AutoReviewer) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go r.workerLoop(ctx)
		}
	})
}

// Resume queues every open job that was assigned to the automatic reviewer
// before the last shutdown.
func (r *AutoReviewer) Resume(ctx context.Context, jobRepo repositories.ReviewJobRepository) error {
	pending, err := jobRepo.FindByStatus(ctx, models.ReviewStatusNotReviewed)
	if err != nil {
		return err
	}
	resumed := 0
	for _, job := range pending {
		if job.ReviewerID != models.AutoReviewer {
			continue
		}
		if err := r.Enqueue(job); err != nil {
			return err
		}
		resumed++
	}
	r.logger.Info("auto review resumed",
		"event", "auto_review_resumed",
		"module", "services",
		"jobs", resumed,
	)
	return nil
}

// Enqueue hands a job to the workers without blocking.
func (r *AutoReviewer) Enqueue(job models.ReviewJob) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return ErrReviewerStopped
	}
	select {
	case r.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop lets the workers drain the queue and waits for them.
func (r *AutoReviewer) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		close(r.jobs)
		r.mu.Unlock()
		r.wg.Wait()
	})
}

func (r *AutoReviewer) workerLoop(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-r.jobs:
			if !ok {
				return
			}
			r.review(ctx, job)
		}
	}
}

func (r *AutoReviewer) review(ctx context.Context, job models.ReviewJob) {
	passed, reason := true, ""
	if provider, ok := r.providers[job.ContentType]; ok {
		body, err := provider.ContentBody(ctx, job.ContentID)
		if err != nil {
			// Left NOT_REVIEWED; Resume retries it on the next start.
			r.logger.Error("auto review body lookup failed",
				"event", "auto_review_body_failed",
				"module", "services",
				"job_id", job.ID,
				"content", job.Content().String(),
				"error", err.Error(),
			)
			return
		}
		passed, reason = r.policy.Evaluate(body)
	}

	if _, err := r.decider.MakeReview(ctx, job.ID, models.AutoReviewer, passed, reason); err != nil {
		r.logger.Error("auto review decision failed",
			"event", "auto_review_failed",
			"module", "services",
			"job_id", job.ID,
			"error", err.Error(),
		)
		return
	}
	r.logger.Info("auto review decided",
		"event", "auto_review_decided",
		"module", "services",
		"job_id", job.ID,
		"passed", passed,
	)
}
