package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewJobTransitionsReturnCopies(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	job := ReviewJob{ID: 1, Status: ReviewStatusNotReviewed, Result: "stale", ReviewerID: 4}

	passed := job.ReviewPass(7, at)
	assert.Equal(t, ReviewStatusReviewed, passed.Status)
	assert.Empty(t, passed.Result)
	require.NotNil(t, passed.OperatorID)
	assert.Equal(t, int64(7), *passed.OperatorID)
	require.NotNil(t, passed.ReviewTime)
	assert.Equal(t, at, *passed.ReviewTime)

	rejected := job.ReviewReject(8, "spam", at)
	assert.Equal(t, ReviewStatusRejected, rejected.Status)
	assert.Equal(t, "spam", rejected.Result)

	canceled := job.Cancel(9, "withdrawn", at)
	assert.Equal(t, ReviewStatusCanceled, canceled.Status)

	assert.Equal(t, ReviewStatusNotReviewed, job.Status)
	assert.Nil(t, job.OperatorID)
	assert.Equal(t, "stale", job.Result)

	info := passed.Info()
	assert.Equal(t, passed.ID, info.ID)
	assert.Equal(t, passed.Status, info.Status)
	assert.Equal(t, passed.ReviewerID, info.ReviewerID)
}
