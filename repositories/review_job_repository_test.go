package repositories_test

import (
	"context"
	"testing"
	"time"

	"content-review-cms/models"
	"content-review-cms/repositories"
	"content-review-cms/repositories/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ReviewJobRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo repositories.ReviewJobRepository
	now  time.Time
}

func (s *ReviewJobRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = repositories.NewReviewJobRepository(repotest.NewDB(s.T()))
	s.now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
}

func (s *ReviewJobRepositoryTestSuite) job(contentID int64, reviewer int64, offset time.Duration) *models.ReviewJob {
	return &models.ReviewJob{
		ContentID:    contentID,
		ContentType:  models.ContentTypeArticle,
		ReviewerID:   reviewer,
		Status:       models.ReviewStatusNotReviewed,
		Mark:         models.ReviewMarkNormal,
		AssignedTime: s.now.Add(offset),
	}
}

func (s *ReviewJobRepositoryTestSuite) TestSecondLiveJobForSameContentIsRejected() {
	s.Require().NoError(s.repo.Create(s.ctx, s.job(1, 7, 0)))

	err := s.repo.Create(s.ctx, s.job(1, 8, time.Minute))
	s.ErrorIs(err, repositories.ErrDuplicate)
}

func (s *ReviewJobRepositoryTestSuite) TestResolvedJobAllowsNewLiveJob() {
	first := s.job(1, 7, 0)
	s.Require().NoError(s.repo.Create(s.ctx, first))

	resolved := first.ReviewPass(7, s.now.Add(time.Minute))
	s.Require().NoError(s.repo.Save(s.ctx, &resolved))

	second := s.job(1, 8, 2*time.Minute)
	s.Require().NoError(s.repo.Create(s.ctx, second))

	latest, err := s.repo.FindLatestByContent(s.ctx, models.ContentIdentity{ContentID: 1, ContentType: models.ContentTypeArticle})
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)
}

func (s *ReviewJobRepositoryTestSuite) TestFindByReviewerFiltersStatuses() {
	open := s.job(1, 7, 0)
	done := s.job(2, 7, time.Minute)
	other := s.job(3, 9, 0)
	for _, j := range []*models.ReviewJob{open, done, other} {
		s.Require().NoError(s.repo.Create(s.ctx, j))
	}
	rejected := done.ReviewReject(7, "spam", s.now)
	s.Require().NoError(s.repo.Save(s.ctx, &rejected))

	live, err := s.repo.FindByReviewer(s.ctx, 7, models.ReviewStatusNotReviewed)
	s.Require().NoError(err)
	s.Require().Len(live, 1)
	s.Equal(open.ID, live[0].ID)

	all, err := s.repo.FindByReviewer(s.ctx, 7)
	s.Require().NoError(err)
	s.Len(all, 2)

	pending, err := s.repo.FindByStatus(s.ctx, models.ReviewStatusNotReviewed)
	s.Require().NoError(err)
	s.Len(pending, 2)
}

func (s *ReviewJobRepositoryTestSuite) TestFindByIDNotFound() {
	_, err := s.repo.FindByID(s.ctx, 404)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func TestReviewJobRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewJobRepositoryTestSuite))
}

func TestContentMetadataRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewContentMetadataRepository(repotest.NewDB(t))
	id := models.ContentIdentity{ContentID: 5, ContentType: models.ContentTypeComment}

	_, err := repo.FindByContent(ctx, id)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.UpdateStatus(ctx, id, models.ContentStatusPublished), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Create(ctx, &models.ContentMetadata{
		ContentID:      id.ContentID,
		ContentType:    id.ContentType,
		UserID:         3,
		Status:         models.ContentStatusReviewing,
		AccessAuthType: models.AccessPublic,
	}))
	assert.ErrorIs(t, repo.Create(ctx, &models.ContentMetadata{
		ContentID:   id.ContentID,
		ContentType: id.ContentType,
		UserID:      3,
		Status:      models.ContentStatusDraft,
	}), repositories.ErrDuplicate)

	swapped, err := repo.CompareAndSetStatus(ctx, id, models.ContentStatusDraft, models.ContentStatusHide)
	require.NoError(t, err)
	assert.False(t, swapped)

	swapped, err = repo.CompareAndSetStatus(ctx, id, models.ContentStatusReviewing, models.ContentStatusPublished)
	require.NoError(t, err)
	assert.True(t, swapped)

	require.NoError(t, repo.UpdateStatus(ctx, id, models.ContentStatusPublished))
	got, err := repo.FindByContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPublished, got.Status)
	assert.Equal(t, int64(3), got.UserID)
}

func TestStaffRepositorySaveUpserts(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewStaffRepository(repotest.NewDB(t))

	require.NoError(t, repo.Save(ctx, &models.Staff{UserID: 2, Type: models.StaffReviewer, Active: true}))
	require.NoError(t, repo.Save(ctx, &models.Staff{UserID: 1, Type: models.StaffReviewer, Active: true}))
	require.NoError(t, repo.Save(ctx, &models.Staff{UserID: 3, Type: models.StaffAdmin, Active: true}))

	reviewers, err := repo.GetActiveByType(ctx, models.StaffReviewer)
	require.NoError(t, err)
	require.Len(t, reviewers, 2)
	assert.Equal(t, int64(1), reviewers[0].UserID)

	require.NoError(t, repo.Save(ctx, &models.Staff{UserID: 2, Type: models.StaffReviewer, Active: false}))
	reviewers, err = repo.GetActiveByType(ctx, models.StaffReviewer)
	require.NoError(t, err)
	require.Len(t, reviewers, 1)

	staff, err := repo.FindByUserID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, staff.Active)
}

func TestContentStatusLogRepositoryIgnoresReplays(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewContentStatusLogRepository(repotest.NewDB(t))
	id := models.ContentIdentity{ContentID: 1, ContentType: models.ContentTypeArticle}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	entry := models.ContentStatusLog{
		EventID:        "e-1",
		ContentID:      id.ContentID,
		ContentType:    id.ContentType,
		PreviousStatus: models.ContentStatusReviewing,
		CurrentStatus:  models.ContentStatusPublished,
		OccurredAt:     at,
	}
	require.NoError(t, repo.Create(ctx, &entry))
	replay := entry
	require.NoError(t, repo.Create(ctx, &replay))
	require.NoError(t, repo.Create(ctx, &models.ContentStatusLog{
		EventID:       "e-0",
		ContentID:     id.ContentID,
		ContentType:   id.ContentType,
		CurrentStatus: models.ContentStatusReviewing,
		OccurredAt:    at.Add(-time.Hour),
	}))

	entries, err := repo.ListByContent(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e-0", entries[0].EventID)
	assert.Equal(t, "e-1", entries[1].EventID)
}
