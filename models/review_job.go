package models

import "time"

// AutoReviewer is the reviewer id used for jobs decided by automatic filtering.
const AutoReviewer int64 = -1

type ReviewJob struct {
	ID           uint         `json:"id" gorm:"primarykey"`
	ContentID    int64        `json:"content_id" gorm:"not null;index:idx_review_jobs_content"`
	ContentType  ContentType  `json:"content_type" gorm:"not null;size:40;index:idx_review_jobs_content"`
	ReviewerID   int64        `json:"reviewer_id" gorm:"not null;index"`
	OperatorID   *int64       `json:"operator_id"`
	Status       ReviewStatus `json:"status" gorm:"not null;size:40;index;default:'NOT_REVIEWED'"`
	Result       string       `json:"result" gorm:"type:text"`
	Mark         ReviewMark   `json:"review_mark" gorm:"not null;size:40;default:'NORMAL'"`
	AssignedTime time.Time    `json:"assigned_time" gorm:"not null"`
	ReviewTime   *time.Time   `json:"review_time"`
}

func (j ReviewJob) Content() ContentIdentity {
	return ContentIdentity{ContentID: j.ContentID, ContentType: j.ContentType}
}

// ReviewPass returns a copy of the job marked REVIEWED by operator.
func (j ReviewJob) ReviewPass(operator int64, at time.Time) ReviewJob {
	j.OperatorID = &operator
	j.Status = ReviewStatusReviewed
	j.Result = ""
	j.ReviewTime = &at
	return j
}

// ReviewReject returns a copy of the job marked REJECTED with reason.
func (j ReviewJob) ReviewReject(operator int64, reason string, at time.Time) ReviewJob {
	j.OperatorID = &operator
	j.Status = ReviewStatusRejected
	j.Result = reason
	j.ReviewTime = &at
	return j
}

// Cancel returns a copy of the job marked CANCELED.
func (j ReviewJob) Cancel(operator int64, reason string, at time.Time) ReviewJob {
	j.OperatorID = &operator
	j.Status = ReviewStatusCanceled
	j.Result = reason
	j.ReviewTime = &at
	return j
}

// ReviewJobInfo is the read-only view of a job handed to callers.
type ReviewJobInfo struct {
	ID           uint         `json:"id"`
	Status       ReviewStatus `json:"status"`
	ContentType  ContentType  `json:"content_type"`
	ContentID    int64        `json:"content_id"`
	Result       string       `json:"result"`
	Mark         ReviewMark   `json:"review_mark"`
	ReviewerID   int64        `json:"reviewer_id"`
	OperatorID   *int64       `json:"operator_id"`
	AssignedTime time.Time    `json:"assigned_time"`
	ReviewTime   *time.Time   `json:"review_time"`
}

func (j ReviewJob) Info() ReviewJobInfo {
	return ReviewJobInfo{
		ID:           j.ID,
		Status:       j.Status,
		ContentType:  j.ContentType,
		ContentID:    j.ContentID,
		Result:       j.Result,
		Mark:         j.Mark,
		ReviewerID:   j.ReviewerID,
		OperatorID:   j.OperatorID,
		AssignedTime: j.AssignedTime,
		ReviewTime:   j.ReviewTime,
	}
}
