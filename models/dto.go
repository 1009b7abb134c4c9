package models

type RegisterRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=writer editor admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateArticleRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required"`
}

type PublishRequest struct {
	AccessAuthType ContentAccessAuthType `json:"access_auth_type" validate:"omitempty,oneof=PUBLIC PASSWORD PRIVATE USER USER_GROUP"`
	Password       string                `json:"password" validate:"required_if_password"`
}

type UpdateAccessRequest struct {
	AccessAuthType ContentAccessAuthType `json:"access_auth_type" validate:"required,oneof=PUBLIC PASSWORD PRIVATE USER USER_GROUP"`
	Password       string                `json:"password" validate:"required_if_password"`
}

type ReviewDecisionRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type RejectReviewRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type AddStaffRequest struct {
	UserID int64     `json:"user_id" validate:"required,gt=0"`
	Type   StaffType `json:"type" validate:"required,oneof=REVIEWER ADMIN"`
}

// PublishResult is returned by a publish call: the new metadata and, when
// moderation is required, the assigned review job.
type PublishResult struct {
	Metadata ContentMetadata `json:"metadata"`
	Job      *ReviewJobInfo  `json:"job,omitempty"`
}
