package models

type ReviewStatus string

const (
	ReviewStatusNotReviewed ReviewStatus = "NOT_REVIEWED"
	ReviewStatusReviewed    ReviewStatus = "REVIEWED"
	ReviewStatusRejected    ReviewStatus = "REJECTED"
	ReviewStatusCanceled    ReviewStatus = "CANCELED"
)

var ReviewStatuses = []ReviewStatus{
	ReviewStatusNotReviewed,
	ReviewStatusReviewed,
	ReviewStatusRejected,
	ReviewStatusCanceled,
}

// IsReviewed is true for every terminal status.
func (s ReviewStatus) IsReviewed() bool {
	return s != ReviewStatusNotReviewed
}

func (s ReviewStatus) Valid() bool {
	for _, v := range ReviewStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ToContentStatus maps a review outcome to the content status it implies.
func (s ReviewStatus) ToContentStatus() ContentStatus {
	switch s {
	case ReviewStatusReviewed:
		return ContentStatusPublished
	case ReviewStatusRejected:
		return ContentStatusReviewRejected
	case ReviewStatusCanceled:
		return ContentStatusHide
	}
	return ContentStatusReviewing
}

type ReviewMark string

const (
	ReviewMarkNormal ReviewMark = "NORMAL"
	// ReviewMarkReport marks a job created for content that was reviewed before.
	ReviewMarkReport ReviewMark = "REPORT"
)
