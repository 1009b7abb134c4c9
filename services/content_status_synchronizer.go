package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"content-review-cms/events"
	"content-review-cms/models"
	"content-review-cms/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentStatusSynchronizer keeps content metadata in step with review
// outcomes. It consumes review state changes, turns them into content status
// events, and applies those to the metadata store.
type ContentStatusSynchronizer struct {
	metadataRepo repositories.ContentMetadataRepository
	jobRepo      repositories.ReviewJobRepository
	logRepo      repositories.ContentStatusLogRepository
	bus          *events.Bus
	logger       *slog.Logger
}

func NewContentStatusSynchronizer(
	metadataRepo repositories.ContentMetadataRepository,
	jobRepo repositories.ReviewJobRepository,
	logRepo repositories.ContentStatusLogRepository,
	bus *events.Bus,
	logger *slog.Logger,
) *ContentStatusSynchronizer {
	return &ContentStatusSynchronizer{
		metadataRepo: metadataRepo,
		jobRepo:      jobRepo,
		logRepo:      logRepo,
		bus:          bus,
		logger:       logger,
	}
}

// Start subscribes both consumers. They run until ctx is cancelled.
func (s *ContentStatusSynchronizer) Start(ctx context.Context) error {
	if err := s.bus.Subscribe(ctx, events.TopicReviewStateChanged, "content-status-synchronizer", s.onReviewStateChanged); err != nil {
		return err
	}
	return s.bus.Subscribe(ctx, events.TopicContentStatusChange, "content-metadata-writer", s.onContentStatusChanged)
}

func (s *ContentStatusSynchronizer) onReviewStateChanged(ctx context.Context, envelope events.Envelope) error {
	change, ok := envelope.Payload.(models.ReviewStateChangeEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T on %s", envelope.Payload, events.TopicReviewStateChanged)
	}
	return s.HandleReviewStateChange(ctx, change)
}

func (s *ContentStatusSynchronizer) onContentStatusChanged(ctx context.Context, envelope events.Envelope) error {
	change, ok := envelope.Payload.(models.ContentStatusEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T on %s", envelope.Payload, events.TopicContentStatusChange)
	}
	return s.ApplyContentStatus(ctx, envelope.EventID, change)
}

// HandleReviewStateChange maps a review decision onto content status and
// publishes the resulting ContentStatusEvent. Content that was forbidden or
// deleted meanwhile keeps its status, and so does content whose job has been
// superseded by a newer assignment.
func (s *ContentStatusSynchronizer) HandleReviewStateChange(ctx context.Context, change models.ReviewStateChangeEvent) error {
	content := change.Job.Content()
	previous := change.PreviousStatus.ToContentStatus()
	current := change.CurrentStatus.ToContentStatus()

	event := models.ContentStatusEvent{
		Content:        content,
		Timestamp:      decisionTime(change.Job),
		PreviousStatus: previous,
		CurrentStatus:  current,
	}

	metadata, err := s.metadataRepo.FindByContent(ctx, content)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.violation(event, checkStatus(event))
	case err != nil:
		return err
	}

	if metadata.Status.IsAdministrativelyTerminal() {
		s.logger.Warn("review outcome ignored for terminal content",
			"event", "content_status_sync_skipped",
			"module", "services",
			"content", content.String(),
			"status", metadata.Status,
			"review_status", change.CurrentStatus,
		)
		return nil
	}

	latest, err := s.jobRepo.FindLatestByContent(ctx, content)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No stored job to compare against.
	case err != nil:
		return err
	case latest.ID != change.Job.ID:
		s.logger.Warn("review outcome of superseded job ignored",
			"event", "content_status_sync_superseded",
			"module", "services",
			"content", content.String(),
			"job_id", change.Job.ID,
			"latest_job_id", latest.ID,
			"review_status", change.CurrentStatus,
		)
		return nil
	}

	event.UserID = metadata.UserID
	envelope := events.NewEnvelope(events.TopicContentStatusChange, event.Timestamp, event)
	return s.bus.Publish(ctx, events.TopicContentStatusChange, envelope)
}

// ApplyContentStatus writes one content status event to the metadata store
// and the status log. A missing metadata row is never created here: the
// event is checked for consistency and rejected when it implies a row
// should have existed.
func (s *ContentStatusSynchronizer) ApplyContentStatus(ctx context.Context, eventID string, event models.ContentStatusEvent) error {
	metadata, err := s.metadataRepo.FindByContent(ctx, event.Content)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.violation(event, checkStatus(event))
	case err != nil:
		return err
	}

	switch {
	case event.Applied, metadata.Status == event.CurrentStatus:
		// Already written; only the log is missing.
	case event.PreviousStatus == "":
		// A creation event only moves a row nobody has touched since.
		if metadata.Status == models.ContentStatusDraft {
			if err := s.metadataRepo.UpdateStatus(ctx, event.Content, event.CurrentStatus); err != nil {
				return err
			}
		}
	default:
		swapped, err := s.metadataRepo.CompareAndSetStatus(ctx, event.Content, event.PreviousStatus, event.CurrentStatus)
		if err != nil {
			return err
		}
		if !swapped {
			s.logger.Warn("stale content status event dropped",
				"event", "content_status_stale",
				"module", "services",
				"content", event.Content.String(),
				"status", metadata.Status,
				"event_previous", event.PreviousStatus,
				"event_current", event.CurrentStatus,
			)
			return nil
		}
	}

	if eventID == "" {
		eventID = uuid.NewString()
	}
	entry := &models.ContentStatusLog{
		EventID:        eventID,
		ContentID:      event.Content.ContentID,
		ContentType:    event.Content.ContentType,
		PreviousStatus: event.PreviousStatus,
		CurrentStatus:  event.CurrentStatus,
		OccurredAt:     event.Timestamp,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		return err
	}

	s.logger.Info("content status applied",
		"event", "content_status_applied",
		"module", "services",
		"content", event.Content.String(),
		"previous_status", event.PreviousStatus,
		"status", event.CurrentStatus,
	)
	return nil
}

func (s *ContentStatusSynchronizer) violation(event models.ContentStatusEvent, err error) error {
	if err == nil {
		s.logger.Warn("content status event without metadata",
			"event", "content_status_no_metadata",
			"module", "services",
			"content", event.Content.String(),
			"previous_status", event.PreviousStatus,
			"status", event.CurrentStatus,
		)
		return nil
	}
	s.logger.Error("content metadata invariant violated",
		"event", "content_status_invariant_violation",
		"module", "services",
		"content", event.Content.String(),
		"previous_status", event.PreviousStatus,
		"status", event.CurrentStatus,
		"error", err.Error(),
	)
	return err
}

// checkStatus decides whether a status change without a metadata row is
// inconsistent: leaving PUBLISHED, or reaching PUBLISHED from a known status,
// both imply the row was written at publish time.
func checkStatus(event models.ContentStatusEvent) error {
	if event.PreviousStatus == models.ContentStatusPublished {
		return &models.ErrorInvariantViolation{
			Content: event.Content,
			Message: "published content has no metadata",
		}
	}
	if event.CurrentStatus == models.ContentStatusPublished && event.PreviousStatus != "" {
		return &models.ErrorInvariantViolation{
			Content: event.Content,
			Message: fmt.Sprintf("content moved %s -> %s without metadata", event.PreviousStatus, event.CurrentStatus),
		}
	}
	return nil
}

func decisionTime(job models.ReviewJob) time.Time {
	if job.ReviewTime != nil {
		return *job.ReviewTime
	}
	return job.AssignedTime
}
