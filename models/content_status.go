package models

type ContentStatus string

const (
	ContentStatusDraft          ContentStatus = "DRAFT"
	ContentStatusReviewing      ContentStatus = "REVIEWING"
	ContentStatusPublished      ContentStatus = "PUBLISHED"
	ContentStatusHide           ContentStatus = "HIDE"
	ContentStatusForbidden      ContentStatus = "FORBIDDEN"
	ContentStatusReviewRejected ContentStatus = "REVIEW_REJECTED"
	ContentStatusDeleted        ContentStatus = "DELETED"
)

// ContentAction triggers a content status transition.
type ContentAction string

const (
	// ActionSubmit sends a draft to moderation.
	ActionSubmit       ContentAction = "submit"
	// ActionAutoApprove publishes a draft that needs no moderation.
	ActionAutoApprove  ContentAction = "auto_approve"
	ActionReviewPass   ContentAction = "review_pass"
	ActionReviewReject ContentAction = "review_reject"
	ActionReviewCancel ContentAction = "review_cancel"
	ActionForbid       ContentAction = "forbid"
	ActionDelete       ContentAction = "delete"
	ActionRestore      ContentAction = "restore"
)

func (s ContentStatus) IsPublicVisitable() bool {
	return s == ContentStatusPublished
}

func (s ContentStatus) NeedsReview() bool {
	return s == ContentStatusReviewing
}

func (s ContentStatus) CanRestore() bool {
	return s == ContentStatusDeleted || s == ContentStatusForbidden
}

// IsAdministrativelyTerminal reports whether only an explicit restore may leave this status.
func (s ContentStatus) IsAdministrativelyTerminal() bool {
	return s == ContentStatusDeleted || s == ContentStatusForbidden
}

// Next returns the status reached by applying action to s, or an
// ERROR_ILLEGAL_TRANSITION error when the action is not legal from s.
func (s ContentStatus) Next(action ContentAction) (ContentStatus, error) {
	switch action {
	case ActionSubmit:
		if s == ContentStatusDraft {
			return ContentStatusReviewing, nil
		}
	case ActionAutoApprove:
		if s == ContentStatusDraft {
			return ContentStatusPublished, nil
		}
	case ActionReviewPass:
		if s == ContentStatusReviewing {
			return ContentStatusPublished, nil
		}
	case ActionReviewReject:
		if s == ContentStatusReviewing {
			return ContentStatusReviewRejected, nil
		}
	case ActionReviewCancel:
		if s == ContentStatusReviewing {
			return ContentStatusHide, nil
		}
	case ActionForbid:
		if s != ContentStatusDeleted && s != ContentStatusForbidden {
			return ContentStatusForbidden, nil
		}
	case ActionDelete:
		switch s {
		case ContentStatusPublished, ContentStatusReviewRejected, ContentStatusHide, ContentStatusForbidden:
			return ContentStatusDeleted, nil
		}
	case ActionRestore:
		if s.CanRestore() {
			return ContentStatusReviewing, nil
		}
	}
	return s, &ErrorBadRequest{
		Code:    CodeIllegalTransition,
		Message: "cannot " + string(action) + " content in status " + string(s),
	}
}

// SubmitAction picks the action for a draft being published.
func SubmitAction(requiresReview bool) ContentAction {
	if requiresReview {
		return ActionSubmit
	}
	return ActionAutoApprove
}
