package services

import (
	"testing"
	"time"

	"content-review-cms/config"
	"content-review-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (f *fixture) seedMetadata(t *testing.T, content models.ContentIdentity, owner int64, status models.ContentStatus) {
	t.Helper()
	require.NoError(t, f.metadata.Create(f.ctx, &models.ContentMetadata{
		ContentID:      content.ContentID,
		ContentType:    content.ContentType,
		UserID:         owner,
		Status:         status,
		AccessAuthType: models.AccessPublic,
	}))
}

func TestApplyContentStatusWithoutMetadata(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		previous  models.ContentStatus
		current   models.ContentStatus
		violation bool
	}{
		{"leaving published", models.ContentStatusPublished, models.ContentStatusHide, true},
		{"reaching published from reviewing", models.ContentStatusReviewing, models.ContentStatusPublished, true},
		{"first publish", "", models.ContentStatusPublished, false},
		{"rejection", models.ContentStatusReviewing, models.ContentStatusReviewRejected, false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := article(int64(100 + i))
			err := f.synchronizer.ApplyContentStatus(f.ctx, "", models.ContentStatusEvent{
				Content:        content,
				Timestamp:      at,
				PreviousStatus: tt.previous,
				CurrentStatus:  tt.current,
			})
			if tt.violation {
				var violation *models.ErrorInvariantViolation
				require.ErrorAs(t, err, &violation)
				assert.Equal(t, content, violation.Content)
			} else {
				require.NoError(t, err)
			}

			_, err = f.metadata.FindByContent(f.ctx, content)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		})
	}
}

func TestReviewOutcomeWithoutMetadataIsRejected(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	reviewed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	err := f.synchronizer.HandleReviewStateChange(f.ctx, models.ReviewStateChangeEvent{
		Job: models.ReviewJob{
			ID:          7,
			ContentID:   9,
			ContentType: models.ContentTypePost,
			Status:      models.ReviewStatusReviewed,
			ReviewTime:  &reviewed,
		},
		PreviousStatus: models.ReviewStatusNotReviewed,
		CurrentStatus:  models.ReviewStatusReviewed,
	})
	var violation *models.ErrorInvariantViolation
	assert.ErrorAs(t, err, &violation)
}

func TestReviewOutcomeSkipsTerminalContent(t *testing.T) {
	for _, status := range []models.ContentStatus{models.ContentStatusForbidden, models.ContentStatusDeleted} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, config.DefaultWorkflow())
			f.seedMetadata(t, article(1), 50, status)

			err := f.synchronizer.HandleReviewStateChange(f.ctx, models.ReviewStateChangeEvent{
				Job:            models.ReviewJob{ID: 1, ContentID: 1, ContentType: models.ContentTypeArticle, Status: models.ReviewStatusReviewed},
				PreviousStatus: models.ReviewStatusNotReviewed,
				CurrentStatus:  models.ReviewStatusReviewed,
			})
			require.NoError(t, err)
			assert.Equal(t, status, f.metadataStatus(t, article(1)))
		})
	}
}

func TestApplyContentStatusDropsStaleEvent(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	f.seedMetadata(t, article(1), 50, models.ContentStatusPublished)

	err := f.synchronizer.ApplyContentStatus(f.ctx, "evt-1", models.ContentStatusEvent{
		Content:        article(1),
		Timestamp:      f.clock.Now(),
		PreviousStatus: models.ContentStatusReviewing,
		CurrentStatus:  models.ContentStatusReviewRejected,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ContentStatusPublished, f.metadataStatus(t, article(1)))
	history, err := f.logs.ListByContent(f.ctx, article(1))
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestApplyContentStatusWritesStatusAndLog(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	f.seedMetadata(t, comment(3), 50, models.ContentStatusReviewing)

	event := models.ContentStatusEvent{
		Content:        comment(3),
		UserID:         50,
		Timestamp:      f.clock.Now(),
		PreviousStatus: models.ContentStatusReviewing,
		CurrentStatus:  models.ContentStatusHide,
	}
	require.NoError(t, f.synchronizer.ApplyContentStatus(f.ctx, "evt-1", event))
	// Replaying the same event changes nothing.
	require.NoError(t, f.synchronizer.ApplyContentStatus(f.ctx, "evt-1", event))

	assert.Equal(t, models.ContentStatusHide, f.metadataStatus(t, comment(3)))
	history, err := f.logs.ListByContent(f.ctx, comment(3))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "evt-1", history[0].EventID)
	assert.Equal(t, models.ContentStatusHide, history[0].CurrentStatus)
}

func TestApplyContentStatusCreationEvent(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	f.seedMetadata(t, comment(3), 50, models.ContentStatusDraft)

	require.NoError(t, f.synchronizer.ApplyContentStatus(f.ctx, "", models.ContentStatusEvent{
		Content:       comment(3),
		Timestamp:     f.clock.Now(),
		CurrentStatus: models.ContentStatusReviewing,
	}))

	assert.Equal(t, models.ContentStatusReviewing, f.metadataStatus(t, comment(3)))
	history, err := f.logs.ListByContent(f.ctx, comment(3))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].EventID)
}

func TestLateCreationEventKeepsNewerStatus(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	f.seedMetadata(t, article(1), 50, models.ContentStatusForbidden)

	require.NoError(t, f.synchronizer.ApplyContentStatus(f.ctx, "evt-create", models.ContentStatusEvent{
		Content:       article(1),
		Timestamp:     f.clock.Now(),
		CurrentStatus: models.ContentStatusReviewing,
	}))

	assert.Equal(t, models.ContentStatusForbidden, f.metadataStatus(t, article(1)))
	history, err := f.logs.ListByContent(f.ctx, article(1))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestReviewOutcomeOfSupersededJobIsIgnored(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	f.seedMetadata(t, article(1), 50, models.ContentStatusReviewing)

	canceledAt := f.clock.Now()
	old := &models.ReviewJob{
		ContentID:    1,
		ContentType:  models.ContentTypeArticle,
		ReviewerID:   1,
		Status:       models.ReviewStatusCanceled,
		AssignedTime: canceledAt.Add(-time.Minute),
		ReviewTime:   &canceledAt,
	}
	require.NoError(t, f.jobs.Create(f.ctx, old))
	current := &models.ReviewJob{
		ContentID:    1,
		ContentType:  models.ContentTypeArticle,
		ReviewerID:   1,
		Status:       models.ReviewStatusNotReviewed,
		Mark:         models.ReviewMarkReport,
		AssignedTime: f.clock.Now(),
	}
	require.NoError(t, f.jobs.Create(f.ctx, current))

	err := f.synchronizer.HandleReviewStateChange(f.ctx, models.ReviewStateChangeEvent{
		Job:            *old,
		PreviousStatus: models.ReviewStatusNotReviewed,
		CurrentStatus:  models.ReviewStatusCanceled,
	})
	require.NoError(t, err)
	assert.Never(t, func() bool {
		m, err := f.metadata.FindByContent(f.ctx, article(1))
		return err != nil || m.Status != models.ContentStatusReviewing
	}, 100*time.Millisecond, 10*time.Millisecond)

	passed := current.ReviewPass(1, f.clock.Now())
	err = f.synchronizer.HandleReviewStateChange(f.ctx, models.ReviewStateChangeEvent{
		Job:            passed,
		PreviousStatus: models.ReviewStatusNotReviewed,
		CurrentStatus:  models.ReviewStatusReviewed,
	})
	require.NoError(t, err)
	f.eventuallyStatus(t, article(1), models.ContentStatusPublished)
}

func TestAppliedEventIsOnlyRecorded(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	// The row has moved on since the forbid was written.
	f.seedMetadata(t, article(1), 50, models.ContentStatusReviewing)

	require.NoError(t, f.synchronizer.ApplyContentStatus(f.ctx, "evt-forbid", models.ContentStatusEvent{
		Content:        article(1),
		Timestamp:      f.clock.Now(),
		PreviousStatus: models.ContentStatusReviewing,
		CurrentStatus:  models.ContentStatusForbidden,
		Applied:        true,
	}))

	assert.Equal(t, models.ContentStatusReviewing, f.metadataStatus(t, article(1)))
	history, err := f.logs.ListByContent(f.ctx, article(1))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ContentStatusForbidden, history[0].CurrentStatus)
}
