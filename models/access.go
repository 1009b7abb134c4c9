package models

import (
	"fmt"
	"strings"
)

type ContentAccessAuthType string

const (
	AccessPublic    ContentAccessAuthType = "PUBLIC"
	AccessPassword  ContentAccessAuthType = "PASSWORD"
	AccessPrivate   ContentAccessAuthType = "PRIVATE"
	AccessUser      ContentAccessAuthType = "USER"
	AccessUserGroup ContentAccessAuthType = "USER_GROUP"
)

// CredentialKind is the kind of payload a permit checker inspects.
type CredentialKind int

const (
	CredentialPassword CredentialKind = iota + 1
	CredentialUser
)

// Accepts reports whether credentials of kind can satisfy this auth type.
func (t ContentAccessAuthType) Accepts(kind CredentialKind) bool {
	switch t {
	case AccessPassword:
		return kind == CredentialPassword
	case AccessPrivate, AccessUser, AccessUserGroup:
		return kind == CredentialUser
	}
	return false
}

func (t ContentAccessAuthType) NeedsAuth() bool {
	return t != AccessPublic
}

func ParseAccessAuthType(name string) (ContentAccessAuthType, error) {
	switch t := ContentAccessAuthType(strings.ToUpper(strings.TrimSpace(name))); t {
	case AccessPublic, AccessPassword, AccessPrivate, AccessUser, AccessUserGroup:
		return t, nil
	}
	return "", fmt.Errorf("unknown access auth type %q", name)
}

// UserCredential identifies the requesting user. It is either a bare UserIDCredential
// or a ResolvedUserCredential; no other implementations exist.
type UserCredential interface {
	UserID() int64
	userCredential()
}

type UserIDCredential int64

func (c UserIDCredential) UserID() int64 { return int64(c) }
func (UserIDCredential) userCredential() {}

type ResolvedUserCredential struct {
	ID       int64
	Username string
	Role     UserRole
	Disabled bool
}

func (c ResolvedUserCredential) UserID() int64 { return c.ID }
func (ResolvedUserCredential) userCredential()  {}

// ContentAccessCredentials is what a visitor presents. Nil fields are absent credentials.
type ContentAccessCredentials struct {
	Password *string
	User     UserCredential
}

// Permit denial reasons.
const (
	DenyPasswordRequired  = "ERROR_PASSWORD_REQUIRED"
	DenyPasswordIncorrect = "ERROR_PASSWORD_INCORRECT"
	DenyUserNotLogin      = "ERROR_USER_NOT_LOGIN"
	DenyNotOwner          = "ERROR_NOT_HAS_ROLE"
	DenyUserDisabled      = "ERROR_USER_DISABLED"
	DenyUserNotFound      = "ERROR_USER_NOT_FOUND"
	DenyNotPublished      = "ERROR_CONTENT_NOT_PUBLISHED"
	DenyCheckFailed       = "ERROR_PERMIT_CHECK_FAILED"
)

// PermitResult is the outcome of an access check. A denial is a value, not an error.
type PermitResult struct {
	Permitted bool     `json:"permitted"`
	Reasons   []string `json:"reasons"`
}

func Permit() PermitResult {
	return PermitResult{Permitted: true, Reasons: []string{}}
}

func Deny(reasons ...string) PermitResult {
	return PermitResult{Permitted: false, Reasons: reasons}
}

// Plus combines two results: permitted only if both are, with all reasons kept once.
func (r PermitResult) Plus(other PermitResult) PermitResult {
	reasons := make([]string, 0, len(r.Reasons)+len(other.Reasons))
	seen := make(map[string]struct{}, cap(reasons))
	for _, reason := range append(append([]string{}, r.Reasons...), other.Reasons...) {
		if _, ok := seen[reason]; ok {
			continue
		}
		seen[reason] = struct{}{}
		reasons = append(reasons, reason)
	}
	return PermitResult{Permitted: r.Permitted && other.Permitted, Reasons: reasons}
}
