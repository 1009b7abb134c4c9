package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"content-review-cms/models"
	"content-review-cms/repositories"
)

var ErrAllocatorClosed = errors.New("reviewer allocator closed")

// ReviewerAllocator balances weighted review load across staff reviewers.
// The ledger is owned by a single goroutine; every method sends it a closure
// and waits for the result.
type ReviewerAllocator struct {
	canAutoReview func(models.ContentType) bool
	logger        *slog.Logger

	ops       chan func(*loadLedger)
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewReviewerAllocator starts the allocator with an empty ledger.
// canAutoReview reports which content types may skip human review; nil means none.
func NewReviewerAllocator(canAutoReview func(models.ContentType) bool, logger *slog.Logger) *ReviewerAllocator {
	if canAutoReview == nil {
		canAutoReview = func(models.ContentType) bool { return false }
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &ReviewerAllocator{
		canAutoReview: canAutoReview,
		logger:        logger,
		ops:           make(chan func(*loadLedger)),
		quit:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *ReviewerAllocator) run() {
	defer close(a.stopped)
	ledger := newLoadLedger()
	for {
		select {
		case op := <-a.ops:
			op(ledger)
		case <-a.quit:
			return
		}
	}
}

// Close stops the ledger goroutine. Later calls fail with ErrAllocatorClosed.
func (a *ReviewerAllocator) Close() {
	a.closeOnce.Do(func() { close(a.quit) })
	<-a.stopped
}

func (a *ReviewerAllocator) do(ctx context.Context, op func(*loadLedger)) error {
	done := make(chan struct{})
	wrapped := func(l *loadLedger) {
		defer close(done)
		op(l)
	}
	select {
	case a.ops <- wrapped:
	case <-a.stopped:
		return ErrAllocatorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Allocate picks the reviewer for a new job of contentType. Content types
// eligible for automatic review go to models.AutoReviewer when allowAutoReview
// is set, and so does everything when no staff reviewer is known. Otherwise
// the least loaded reviewer (lowest id on ties) takes the job and its load
// grows by the content type weight.
func (a *ReviewerAllocator) Allocate(ctx context.Context, contentType models.ContentType, allowAutoReview bool) (int64, error) {
	weight := contentType.Weight()
	if weight <= 0 {
		return 0, &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "unknown content type " + string(contentType)}
	}
	if allowAutoReview && a.canAutoReview(contentType) {
		return models.AutoReviewer, nil
	}

	reviewer := models.AutoReviewer
	var newLoad int
	err := a.do(ctx, func(l *loadLedger) {
		id, load, ok := l.least()
		if !ok {
			return
		}
		reviewer = id
		newLoad = load + weight
		l.set(id, newLoad)
	})
	if err != nil {
		return 0, err
	}

	if reviewer == models.AutoReviewer {
		a.logger.Warn("no staff reviewer available, falling back to auto review",
			"event", "reviewer_allocate_fallback",
			"module", "services",
			"content_type", contentType,
		)
		return reviewer, nil
	}
	a.logger.Debug("reviewer allocated",
		"event", "reviewer_allocated",
		"module", "services",
		"content_type", contentType,
		"reviewer_id", reviewer,
		"load", newLoad,
	)
	return reviewer, nil
}

// Release returns the weight of one finished job of contentType. The auto
// reviewer and reviewers no longer in the ledger are ignored.
func (a *ReviewerAllocator) Release(ctx context.Context, reviewerID int64, contentType models.ContentType) error {
	if reviewerID == models.AutoReviewer {
		return nil
	}
	weight := contentType.Weight()
	return a.do(ctx, func(l *loadLedger) {
		load, ok := l.weight[reviewerID]
		if !ok {
			a.logger.Debug("release for reviewer outside the ledger",
				"event", "reviewer_release_unknown",
				"module", "services",
				"reviewer_id", reviewerID,
			)
			return
		}
		load -= weight
		if load < 0 {
			a.logger.Warn("reviewer load went negative, clamping",
				"event", "reviewer_release_underflow",
				"module", "services",
				"reviewer_id", reviewerID,
				"load", load,
			)
			load = 0
		}
		l.set(reviewerID, load)
	})
}

// OnReviewerAdded enrolls a reviewer at load 0. A reviewer already in the
// ledger keeps its load.
func (a *ReviewerAllocator) OnReviewerAdded(ctx context.Context, reviewerID int64) error {
	if reviewerID == models.AutoReviewer {
		return nil
	}
	return a.do(ctx, func(l *loadLedger) {
		if !l.has(reviewerID) {
			l.set(reviewerID, 0)
		}
	})
}

// OnReviewerRemoved drops a reviewer so it receives no further jobs.
func (a *ReviewerAllocator) OnReviewerRemoved(ctx context.Context, reviewerID int64) error {
	return a.do(ctx, func(l *loadLedger) {
		l.remove(reviewerID)
	})
}

// Loads returns a copy of the current load per reviewer.
func (a *ReviewerAllocator) Loads(ctx context.Context) (map[int64]int, error) {
	var out map[int64]int
	err := a.do(ctx, func(l *loadLedger) {
		out = l.snapshot()
	})
	return out, err
}

// Rebuild replaces the ledger with one derived from persisted state: the
// weight of every NOT_REVIEWED job summed per active reviewer, and every
// other active reviewer at 0.
func (a *ReviewerAllocator) Rebuild(ctx context.Context, jobs repositories.ReviewJobRepository, staff repositories.StaffRepository) error {
	reviewers, err := staff.GetActiveByType(ctx, models.StaffReviewer)
	if err != nil {
		return err
	}
	pending, err := jobs.FindByStatus(ctx, models.ReviewStatusNotReviewed)
	if err != nil {
		return err
	}

	loads := make(map[int64]int, len(reviewers))
	for _, s := range reviewers {
		loads[s.UserID] = 0
	}
	skipped := 0
	for _, job := range pending {
		if job.ReviewerID == models.AutoReviewer {
			continue
		}
		if _, ok := loads[job.ReviewerID]; !ok {
			skipped++
			continue
		}
		loads[job.ReviewerID] += job.ContentType.Weight()
	}

	err = a.do(ctx, func(l *loadLedger) {
		fresh := newLoadLedger()
		for id, load := range loads {
			fresh.set(id, load)
		}
		*l = *fresh
	})
	if err != nil {
		return err
	}

	a.logger.Info("reviewer ledger rebuilt",
		"event", "reviewer_ledger_rebuilt",
		"module", "services",
		"reviewers", len(loads),
		"pending_jobs", len(pending),
		"jobs_of_inactive_reviewers", skipped,
	)
	return nil
}
