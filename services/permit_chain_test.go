package services

import (
	"context"
	"testing"

	"content-review-cms/config"
	"content-review-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubChecker struct {
	kind   models.CredentialKind
	result models.PermitResult
	calls  int
}

func (c *stubChecker) Kind() models.CredentialKind { return c.kind }

func (c *stubChecker) Check(context.Context, models.ContentMetadata, models.ContentAccessAuthType, models.ContentAccessCredentials) models.PermitResult {
	c.calls++
	return c.result
}

func password(s string) *string { return &s }

func TestPermitChainPublicAlwaysPermits(t *testing.T) {
	denyAll := &stubChecker{kind: models.CredentialUser, result: models.Deny("NOPE")}
	chain := NewPermitChain(denyAll)

	for _, creds := range []models.ContentAccessCredentials{
		{},
		{Password: password("wrong")},
		{User: models.UserIDCredential(3)},
	} {
		result := chain.Check(context.Background(), models.ContentMetadata{UserID: 1}, models.AccessPublic, creds)
		assert.True(t, result.Permitted)
		assert.Empty(t, result.Reasons)
	}
	assert.Zero(t, denyAll.calls)
}

func TestPermitChainRunsEveryApplicableChecker(t *testing.T) {
	first := &stubChecker{kind: models.CredentialUser, result: models.Deny("FIRST")}
	skipped := &stubChecker{kind: models.CredentialPassword, result: models.Deny("PASSWORD")}
	second := &stubChecker{kind: models.CredentialUser, result: models.Deny("SECOND")}
	chain := NewPermitChain(first, skipped, second)

	result := chain.Check(context.Background(), models.ContentMetadata{}, models.AccessUser, models.ContentAccessCredentials{})

	assert.False(t, result.Permitted)
	assert.Equal(t, []string{"FIRST", "SECOND"}, result.Reasons)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, skipped.calls)
}

func TestPermitChainWithBuiltinCheckers(t *testing.T) {
	f := newFixture(t, config.DefaultWorkflow())
	owner := f.createUser(t, "owner", models.RoleWriter)
	reader := f.createUser(t, "reader", models.RoleWriter)
	blocked := f.createUser(t, "blocked", models.RoleWriter)
	require.NoError(t, f.users.SetDisabled(f.ctx, blocked.ID, true))
	blocked.Disabled = true

	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	content := models.ContentMetadata{ContentID: 1, ContentType: models.ContentTypeArticle, UserID: int64(owner.ID), PasswordHash: string(hash)}

	chain := NewPermitChain(NewPasswordChecker(), NewUserChecker(), NewUserBlockChecker(f.users, f.logger))

	tests := []struct {
		name     string
		authType models.ContentAccessAuthType
		creds    models.ContentAccessCredentials
		want     models.PermitResult
	}{
		{"password missing", models.AccessPassword, models.ContentAccessCredentials{}, models.Deny(models.DenyPasswordRequired)},
		{"password wrong", models.AccessPassword, models.ContentAccessCredentials{Password: password("guess")}, models.Deny(models.DenyPasswordIncorrect)},
		{"password right", models.AccessPassword, models.ContentAccessCredentials{Password: password("open sesame")}, models.Permit()},
		{"password ignores user", models.AccessPassword, models.ContentAccessCredentials{User: models.UserIDCredential(reader.ID)}, models.Deny(models.DenyPasswordRequired)},
		{"user anonymous", models.AccessUser, models.ContentAccessCredentials{}, models.Deny(models.DenyUserNotLogin)},
		{"user logged in", models.AccessUser, models.ContentAccessCredentials{User: models.UserIDCredential(reader.ID)}, models.Permit()},
		{"user group logged in", models.AccessUserGroup, models.ContentAccessCredentials{User: models.UserIDCredential(reader.ID)}, models.Permit()},
		{"user disabled", models.AccessUser, models.ContentAccessCredentials{User: models.UserIDCredential(blocked.ID)}, models.Deny(models.DenyUserDisabled)},
		{"user unknown", models.AccessUser, models.ContentAccessCredentials{User: models.UserIDCredential(9999)}, models.Deny(models.DenyUserNotFound)},
		{"resolved disabled", models.AccessUser, models.ContentAccessCredentials{User: blocked.Credential()}, models.Deny(models.DenyUserDisabled)},
		{"private stranger", models.AccessPrivate, models.ContentAccessCredentials{User: reader.Credential()}, models.Deny(models.DenyNotOwner)},
		{"private disabled stranger", models.AccessPrivate, models.ContentAccessCredentials{User: blocked.Credential()}, models.Deny(models.DenyNotOwner, models.DenyUserDisabled)},
		{"private owner", models.AccessPrivate, models.ContentAccessCredentials{User: models.UserIDCredential(owner.ID)}, models.Permit()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chain.Check(f.ctx, content, tt.authType, tt.creds)
			assert.Equal(t, tt.want.Permitted, got.Permitted)
			assert.ElementsMatch(t, tt.want.Reasons, got.Reasons)
		})
	}
}

func TestModerationPolicy(t *testing.T) {
	policy := NewModerationPolicy([]string{" Casino ", "", "spam"})

	passed, reason := policy.Evaluate("A quiet afternoon")
	assert.True(t, passed)
	assert.Empty(t, reason)

	passed, reason = policy.Evaluate("Win big at the CASINO tonight")
	assert.False(t, passed)
	assert.Contains(t, reason, "casino")

	passed, _ = NewModerationPolicy(nil).Evaluate("anything")
	assert.True(t, passed)
}
