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

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PublishContentInput describes a first publication of a content item.
type PublishContentInput struct {
	Content        models.ContentIdentity
	OwnerID        int64
	AccessAuthType models.ContentAccessAuthType
	Password       string
}

type ContentService interface {
	// Publish moves new or DRAFT content to REVIEWING, opening a review job,
	// or straight to PUBLISHED when its type needs no moderation.
	Publish(ctx context.Context, in PublishContentInput) (*models.PublishResult, error)
	// Forbid takes content down and cancels its open review job.
	Forbid(ctx context.Context, content models.ContentIdentity, operatorID int64, reason string) (*models.ContentMetadata, error)
	Delete(ctx context.Context, content models.ContentIdentity, actor models.ResolvedUserCredential) (*models.ContentMetadata, error)
	// Restore sends forbidden or deleted content back to human review.
	Restore(ctx context.Context, content models.ContentIdentity, operatorID int64) (*models.PublishResult, error)
	UpdateAccess(ctx context.Context, content models.ContentIdentity, ownerID int64, authType models.ContentAccessAuthType, password string) (*models.ContentMetadata, error)
	// CheckAccess reports whether creds may read content.
	CheckAccess(ctx context.Context, content models.ContentIdentity, creds models.ContentAccessCredentials) (models.PermitResult, *models.ContentMetadata, error)
	GetMetadata(ctx context.Context, content models.ContentIdentity) (*models.ContentMetadata, error)
	History(ctx context.Context, content models.ContentIdentity) ([]models.ContentStatusLog, error)
}

type contentService struct {
	metadataRepo  repositories.ContentMetadataRepository
	logRepo       repositories.ContentStatusLogRepository
	reviewService ReviewService
	statusService ReviewStatusService
	permits       *PermitChain
	bus           *events.Bus
	workflow      config.WorkflowConfig
	clock         Clock
	logger        *slog.Logger
}

func NewContentService(
	metadataRepo repositories.ContentMetadataRepository,
	logRepo repositories.ContentStatusLogRepository,
	reviewService ReviewService,
	statusService ReviewStatusService,
	permits *PermitChain,
	bus *events.Bus,
	workflow config.WorkflowConfig,
	clock Clock,
	logger *slog.Logger,
) ContentService {
	return &contentService{
		metadataRepo:  metadataRepo,
		logRepo:       logRepo,
		reviewService: reviewService,
		statusService: statusService,
		permits:       permits,
		bus:           bus,
		workflow:      workflow,
		clock:         clock,
		logger:        logger,
	}
}

func (s *contentService) Publish(ctx context.Context, in PublishContentInput) (*models.PublishResult, error) {
	if !in.Content.ContentType.Valid() {
		return nil, &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "unknown content type " + string(in.Content.ContentType)}
	}
	authType := in.AccessAuthType
	if authType == "" {
		authType = models.AccessPublic
	}
	passwordHash, err := hashAccessPassword(authType, in.Password)
	if err != nil {
		return nil, err
	}

	requiresReview := s.workflow.RequiresReview(in.Content.ContentType)
	action := models.SubmitAction(requiresReview)

	metadata, err := s.metadataRepo.FindByContent(ctx, in.Content)
	var previous models.ContentStatus
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		next, err := models.ContentStatusDraft.Next(action)
		if err != nil {
			return nil, err
		}
		metadata = &models.ContentMetadata{
			ContentID:      in.Content.ContentID,
			ContentType:    in.Content.ContentType,
			UserID:         in.OwnerID,
			Status:         next,
			AccessAuthType: authType,
			PasswordHash:   passwordHash,
		}
		if err := s.metadataRepo.Create(ctx, metadata); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, &models.ErrorBadRequest{Code: models.CodeIllegalTransition, Message: "content " + in.Content.String() + " is already published"}
			}
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if metadata.UserID != in.OwnerID {
			return nil, &models.ErrorForbidden{Message: "only the owner may publish content " + in.Content.String()}
		}
		next, err := metadata.Status.Next(action)
		if err != nil {
			return nil, err
		}
		previous = metadata.Status
		if err := s.moveStatus(ctx, metadata, next); err != nil {
			return nil, err
		}
		if err := s.metadataRepo.UpdateAccess(ctx, in.Content, authType, passwordHash); err != nil {
			return nil, err
		}
		metadata.AccessAuthType = authType
		metadata.PasswordHash = passwordHash
	}

	// Announced before any job exists so the log keeps submission ahead of
	// the review outcome.
	s.announce(ctx, metadata, previous)

	result := &models.PublishResult{Metadata: *metadata}
	if requiresReview {
		job, err := s.reviewService.AssignReviewer(ctx, in.Content, true)
		if err != nil {
			// Back to DRAFT so the owner can submit again.
			s.revert(ctx, metadata, models.ContentStatusDraft)
			return nil, err
		}
		result.Job = job
	}
	return result, nil
}

func (s *contentService) Forbid(ctx context.Context, content models.ContentIdentity, operatorID int64, reason string) (*models.ContentMetadata, error) {
	metadata, err := s.GetMetadata(ctx, content)
	if err != nil {
		return nil, err
	}
	next, err := metadata.Status.Next(models.ActionForbid)
	if err != nil {
		return nil, err
	}
	previous := metadata.Status
	if err := s.moveStatus(ctx, metadata, next); err != nil {
		return nil, err
	}
	s.announce(ctx, metadata, previous)

	open, err := s.reviewService.FindOpenJob(ctx, content)
	if err != nil {
		return nil, err
	}
	if open != nil {
		if reason == "" {
			reason = "content forbidden"
		}
		if _, err := s.statusService.CancelReview(ctx, open.ID, operatorID, reason); err != nil {
			return nil, err
		}
	}
	return metadata, nil
}

func (s *contentService) Delete(ctx context.Context, content models.ContentIdentity, actor models.ResolvedUserCredential) (*models.ContentMetadata, error) {
	metadata, err := s.GetMetadata(ctx, content)
	if err != nil {
		return nil, err
	}
	if metadata.UserID != actor.ID && !actor.Role.IsStaff() {
		return nil, &models.ErrorForbidden{Message: "only the owner or staff may delete content " + content.String()}
	}
	next, err := metadata.Status.Next(models.ActionDelete)
	if err != nil {
		return nil, err
	}
	previous := metadata.Status
	if err := s.moveStatus(ctx, metadata, next); err != nil {
		return nil, err
	}
	s.announce(ctx, metadata, previous)
	return metadata, nil
}

func (s *contentService) Restore(ctx context.Context, content models.ContentIdentity, operatorID int64) (*models.PublishResult, error) {
	metadata, err := s.GetMetadata(ctx, content)
	if err != nil {
		return nil, err
	}
	next, err := metadata.Status.Next(models.ActionRestore)
	if err != nil {
		return nil, err
	}
	previous := metadata.Status
	if err := s.moveStatus(ctx, metadata, next); err != nil {
		return nil, err
	}

	s.announce(ctx, metadata, previous)

	job, err := s.reviewService.AssignReviewer(ctx, content, false)
	if err != nil {
		s.revert(ctx, metadata, previous)
		return nil, err
	}

	s.logger.Info("content restored",
		"event", "content_restored",
		"module", "services",
		"content", content.String(),
		"operator_id", operatorID,
		"job_id", job.ID,
	)
	return &models.PublishResult{Metadata: *metadata, Job: job}, nil
}

func (s *contentService) UpdateAccess(ctx context.Context, content models.ContentIdentity, ownerID int64, authType models.ContentAccessAuthType, password string) (*models.ContentMetadata, error) {
	metadata, err := s.GetMetadata(ctx, content)
	if err != nil {
		return nil, err
	}
	if metadata.UserID != ownerID {
		return nil, &models.ErrorForbidden{Message: "only the owner may change access of " + content.String()}
	}
	passwordHash, err := hashAccessPassword(authType, password)
	if err != nil {
		return nil, err
	}
	if err := s.metadataRepo.UpdateAccess(ctx, content, authType, passwordHash); err != nil {
		return nil, err
	}
	metadata.AccessAuthType = authType
	metadata.PasswordHash = passwordHash
	return metadata, nil
}

func (s *contentService) CheckAccess(ctx context.Context, content models.ContentIdentity, creds models.ContentAccessCredentials) (models.PermitResult, *models.ContentMetadata, error) {
	metadata, err := s.GetMetadata(ctx, content)
	if err != nil {
		return models.PermitResult{}, nil, err
	}

	if creds.User != nil && creds.User.UserID() == metadata.UserID {
		return models.Permit(), metadata, nil
	}
	if !metadata.Status.IsPublicVisitable() && !isStaff(creds.User) {
		return models.Deny(models.DenyNotPublished), metadata, nil
	}
	return s.permits.Check(ctx, *metadata, metadata.AccessAuthType, creds), metadata, nil
}

func (s *contentService) GetMetadata(ctx context.Context, content models.ContentIdentity) (*models.ContentMetadata, error) {
	metadata, err := s.metadataRepo.FindByContent(ctx, content)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("content " + content.String() + " not found")
		}
		return nil, err
	}
	return metadata, nil
}

func (s *contentService) History(ctx context.Context, content models.ContentIdentity) ([]models.ContentStatusLog, error) {
	if _, err := s.GetMetadata(ctx, content); err != nil {
		return nil, err
	}
	return s.logRepo.ListByContent(ctx, content)
}

// moveStatus writes next only if the row still holds metadata.Status.
func (s *contentService) moveStatus(ctx context.Context, metadata *models.ContentMetadata, next models.ContentStatus) error {
	swapped, err := s.metadataRepo.CompareAndSetStatus(ctx, metadata.Identity(), metadata.Status, next)
	if err != nil {
		return err
	}
	if !swapped {
		return &models.ErrorConflict{Message: fmt.Sprintf("content %s changed status concurrently", metadata.Identity())}
	}
	metadata.Status = next
	return nil
}

// revert undoes a status move whose follow-up failed.
func (s *contentService) revert(ctx context.Context, metadata *models.ContentMetadata, previous models.ContentStatus) {
	current := metadata.Status
	if err := s.moveStatus(ctx, metadata, previous); err != nil {
		s.logger.Error("status revert failed",
			"event", "content_status_revert_failed",
			"module", "services",
			"content", metadata.Identity().String(),
			"from", current,
			"to", previous,
			"error", err.Error(),
		)
		return
	}
	s.announce(ctx, metadata, current)
}

// announce publishes a status change that is already written to metadata.
func (s *contentService) announce(ctx context.Context, metadata *models.ContentMetadata, previous models.ContentStatus) {
	event := models.ContentStatusEvent{
		Content:        metadata.Identity(),
		UserID:         metadata.UserID,
		Timestamp:      s.clock.Now(),
		PreviousStatus: previous,
		CurrentStatus:  metadata.Status,
		Applied:        true,
	}
	envelope := events.NewEnvelope(events.TopicContentStatusChange, event.Timestamp, event)
	if err := s.bus.Publish(ctx, events.TopicContentStatusChange, envelope); err != nil {
		s.logger.Error("content status change not published",
			"event", "content_status_publish_failed",
			"module", "services",
			"content", event.Content.String(),
			"error", err.Error(),
		)
	}
}

func hashAccessPassword(authType models.ContentAccessAuthType, password string) (string, error) {
	if authType != models.AccessPassword {
		return "", nil
	}
	if password == "" {
		return "", &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "password is required for password protected content"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isStaff(user models.UserCredential) bool {
	resolved, ok := user.(models.ResolvedUserCredential)
	return ok && resolved.Role.IsStaff()
}
