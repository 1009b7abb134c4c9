package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"content-review-cms/config"
	"content-review-cms/events"
	"content-review-cms/models"
	"content-review-cms/repositories"
	"content-review-cms/repositories/repotest"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock advances one second on every reading so stamps are ordered.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// recordingQueue captures jobs handed to the automatic reviewer.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []models.ReviewJob
}

func (q *recordingQueue) Enqueue(job models.ReviewJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Jobs() []models.ReviewJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.ReviewJob(nil), q.jobs...)
}

// fixture wires the workflow against a private sqlite database.
type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	clock  *fakeClock
	logger *slog.Logger

	users    repositories.UserRepository
	metadata repositories.ContentMetadataRepository
	jobs     repositories.ReviewJobRepository
	staff    repositories.StaffRepository
	logs     repositories.ContentStatusLogRepository

	bus          *events.Bus
	allocator    *ReviewerAllocator
	queue        *recordingQueue
	reviews      ReviewService
	statuses     ReviewStatusService
	synchronizer *ContentStatusSynchronizer
	contents     ContentService
}

func newFixture(t *testing.T, workflow config.WorkflowConfig) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	db := repotest.NewDB(t)
	f := &fixture{
		ctx:      ctx,
		db:       db,
		clock:    newFakeClock(),
		logger:   silentLogger(),
		users:    repositories.NewUserRepository(db),
		metadata: repositories.NewContentMetadataRepository(db),
		jobs:     repositories.NewReviewJobRepository(db),
		staff:    repositories.NewStaffRepository(db),
		logs:     repositories.NewContentStatusLogRepository(db),
		queue:    &recordingQueue{},
	}
	f.bus = events.NewBus(workflow.EventQueueSize, f.logger)
	f.allocator = NewReviewerAllocator(workflow.CanAutoReview, f.logger)

	locks := NewContentLocks()
	f.statuses = NewReviewStatusService(f.jobs, f.allocator, f.bus, locks, workflow.ReReviewPolicy, f.clock, f.logger)
	f.reviews = NewReviewService(f.jobs, f.allocator, f.queue, locks, f.clock, f.logger)
	permits := NewPermitChain(NewPasswordChecker(), NewUserChecker(), NewUserBlockChecker(f.users, f.logger))
	f.contents = NewContentService(f.metadata, f.logs, f.reviews, f.statuses, permits, f.bus, workflow, f.clock, f.logger)
	f.synchronizer = NewContentStatusSynchronizer(f.metadata, f.jobs, f.logs, f.bus, f.logger)
	require.NoError(t, f.synchronizer.Start(ctx))

	t.Cleanup(func() {
		f.bus.Drain()
		cancel()
		f.bus.Wait()
		f.allocator.Close()
	})
	return f
}

func (f *fixture) addReviewers(t *testing.T, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.staff.Save(f.ctx, &models.Staff{UserID: id, Type: models.StaffReviewer, Active: true}))
		require.NoError(t, f.allocator.OnReviewerAdded(f.ctx, id))
	}
}

func (f *fixture) createUser(t *testing.T, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, f.users.Create(f.ctx, user))
	return user
}

func (f *fixture) metadataStatus(t *testing.T, content models.ContentIdentity) models.ContentStatus {
	t.Helper()
	m, err := f.metadata.FindByContent(f.ctx, content)
	require.NoError(t, err)
	return m.Status
}

func (f *fixture) eventuallyStatus(t *testing.T, content models.ContentIdentity, want models.ContentStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		m, err := f.metadata.FindByContent(f.ctx, content)
		return err == nil && m.Status == want
	}, 2*time.Second, 10*time.Millisecond, "content %s never reached %s", content, want)
}

func article(id int64) models.ContentIdentity {
	return models.ContentIdentity{ContentID: id, ContentType: models.ContentTypeArticle}
}

func comment(id int64) models.ContentIdentity {
	return models.ContentIdentity{ContentID: id, ContentType: models.ContentTypeComment}
}
