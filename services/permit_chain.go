package services

import (
	"context"
	"errors"
	"log/slog"

	"content-review-cms/models"
	"content-review-cms/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PermitChecker verifies one kind of credential against a content item.
type PermitChecker interface {
	Kind() models.CredentialKind
	Check(ctx context.Context, content models.ContentMetadata, authType models.ContentAccessAuthType, creds models.ContentAccessCredentials) models.PermitResult
}

// PermitChain runs every checker whose credential kind the auth type accepts
// and combines their verdicts. It never stops at the first denial so callers
// get every reason at once. Checkers of other kinds abstain.
type PermitChain struct {
	checker PermitChecker
	next    *PermitChain
}

// NewPermitChain links checkers in the given order.
func NewPermitChain(checkers ...PermitChecker) *PermitChain {
	var head *PermitChain
	for i := len(checkers) - 1; i >= 0; i-- {
		head = &PermitChain{checker: checkers[i], next: head}
	}
	return head
}

func (c *PermitChain) Check(ctx context.Context, content models.ContentMetadata, authType models.ContentAccessAuthType, creds models.ContentAccessCredentials) models.PermitResult {
	result := models.Permit()
	if !authType.NeedsAuth() {
		return result
	}
	for link := c; link != nil; link = link.next {
		if !authType.Accepts(link.checker.Kind()) {
			continue
		}
		result = result.Plus(link.checker.Check(ctx, content, authType, creds))
	}
	return result
}

type passwordChecker struct{}

// NewPasswordChecker matches the supplied password against the bcrypt hash
// stored on the content.
func NewPasswordChecker() PermitChecker {
	return passwordChecker{}
}

func (passwordChecker) Kind() models.CredentialKind { return models.CredentialPassword }

func (passwordChecker) Check(_ context.Context, content models.ContentMetadata, _ models.ContentAccessAuthType, creds models.ContentAccessCredentials) models.PermitResult {
	if creds.Password == nil || *creds.Password == "" {
		return models.Deny(models.DenyPasswordRequired)
	}
	if content.PasswordHash == "" {
		return models.Deny(models.DenyPasswordIncorrect)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(content.PasswordHash), []byte(*creds.Password)); err != nil {
		return models.Deny(models.DenyPasswordIncorrect)
	}
	return models.Permit()
}

type userChecker struct{}

// NewUserChecker requires a logged-in user. PRIVATE content additionally
// requires the owner. USER_GROUP has no group model yet and behaves like USER.
func NewUserChecker() PermitChecker {
	return userChecker{}
}

func (userChecker) Kind() models.CredentialKind { return models.CredentialUser }

func (userChecker) Check(_ context.Context, content models.ContentMetadata, authType models.ContentAccessAuthType, creds models.ContentAccessCredentials) models.PermitResult {
	if creds.User == nil {
		return models.Deny(models.DenyUserNotLogin)
	}
	if authType == models.AccessPrivate && creds.User.UserID() != content.UserID {
		return models.Deny(models.DenyNotOwner)
	}
	return models.Permit()
}

type userBlockChecker struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

// NewUserBlockChecker denies disabled accounts. Bare user ids are resolved
// through userRepo; resolved credentials are trusted as given.
func NewUserBlockChecker(userRepo repositories.UserRepository, logger *slog.Logger) PermitChecker {
	return &userBlockChecker{userRepo: userRepo, logger: logger}
}

func (c *userBlockChecker) Kind() models.CredentialKind { return models.CredentialUser }

func (c *userBlockChecker) Check(ctx context.Context, content models.ContentMetadata, _ models.ContentAccessAuthType, creds models.ContentAccessCredentials) models.PermitResult {
	var disabled bool
	switch user := creds.User.(type) {
	case nil:
		// userChecker reports the missing login.
		return models.Permit()
	case models.ResolvedUserCredential:
		disabled = user.Disabled
	case models.UserIDCredential:
		found, err := c.userRepo.GetByID(ctx, uint(user.UserID()))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Deny(models.DenyUserNotFound)
			}
			c.logger.Error("user lookup failed during permit check",
				"event", "permit_user_lookup_failed",
				"module", "services",
				"user_id", user.UserID(),
				"error", err.Error(),
			)
			return models.Deny(models.DenyCheckFailed)
		}
		disabled = found.Disabled
	}
	if disabled && creds.User.UserID() != content.UserID {
		return models.Deny(models.DenyUserDisabled)
	}
	return models.Permit()
}
