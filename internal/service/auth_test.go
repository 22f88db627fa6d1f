package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	mocks "github.com/cloudboard/cloudboard/internal/mocks/auth"
	"github.com/cloudboard/cloudboard/internal/ports"
)

func newAuthService(provider ports.IdentityProvider) (*AuthService, *mocks.MemorySessionStore, *mocks.MemoryPendingStore) {
	sessions := mocks.NewMemorySessionStore()
	pending := mocks.NewMemoryPendingStore()
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Pending:  pending,
	})
	return svc, sessions, pending
}

func TestPasswordLogin_OpensSession(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.DefaultIdentity = &domainauth.Identity{
		Username:    "user@example.com",
		Groups:      []string{"Admin"},
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	svc, sessions, _ := newAuthService(provider)

	result, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "user@example.com",
		Password: "pw",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Empty(t, result.ChallengeToken)
	assert.True(t, result.Session.IsAdmin())
	assert.Equal(t, 1, sessions.Len())

	got, err := svc.GetSession(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Username)
}

func TestPasswordLogin_ChallengeParksContinuation(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.VerifyPasswordFunc = func(_ context.Context, username, _ string) (ports.PasswordResult, error) {
		return ports.PasswordResult{Challenge: &domainauth.PendingChallenge{
			Kind:            domainauth.ChallengeNewPasswordRequired,
			Username:        username,
			ProviderSession: "sess-9",
		}}, nil
	}
	svc, sessions, pending := newAuthService(provider)

	result, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "fresh@example.com",
		Password: "temp",
	})

	require.NoError(t, err)
	assert.Nil(t, result.Session)
	require.NotEmpty(t, result.ChallengeToken)
	assert.Equal(t, domainauth.ChallengeNewPasswordRequired, result.ChallengeKind)
	assert.Equal(t, 0, sessions.Len(), "no session until the challenge completes")

	parked, err := pending.GetPending(context.Background(), result.ChallengeToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-9", parked.ProviderSession)
}

func TestPasswordLogin_UnsupportedChallenge(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.VerifyPasswordFunc = func(_ context.Context, username, _ string) (ports.PasswordResult, error) {
		return ports.PasswordResult{Challenge: &domainauth.PendingChallenge{
			Kind:     domainauth.ChallengeMFASetup,
			Username: username,
		}}, nil
	}
	svc, _, _ := newAuthService(provider)

	_, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "user@example.com",
		Password: "pw",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err))
}

func TestCompleteChallenge_OpensSessionAndClearsPending(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.VerifyPasswordFunc = func(_ context.Context, username, _ string) (ports.PasswordResult, error) {
		return ports.PasswordResult{Challenge: &domainauth.PendingChallenge{
			Kind:            domainauth.ChallengeNewPasswordRequired,
			Username:        username,
			ProviderSession: "sess-2",
		}}, nil
	}
	svc, sessions, pending := newAuthService(provider)

	result, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "fresh@example.com",
		Password: "temp",
	})
	require.NoError(t, err)

	session, err := svc.CompleteChallenge(context.Background(), CompleteChallengeInput{
		ChallengeToken: result.ChallengeToken,
		NewPassword:    "n3w-Passw0rd!",
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", session.Username)
	assert.Equal(t, 1, sessions.Len())

	_, err = pending.GetPending(context.Background(), result.ChallengeToken)
	assert.True(t, apperrors.IsNotFound(err), "continuation is consumed on success")
}

func TestCompleteChallenge_UnknownToken(t *testing.T) {
	svc, _, _ := newAuthService(mocks.NewMockIdentityProvider())

	_, err := svc.CompleteChallenge(context.Background(), CompleteChallengeInput{
		ChallengeToken: "no-such-token",
		NewPassword:    "n3w-Passw0rd!",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsChallengeMismatch(err))
}

func TestCompleteChallenge_ProviderRejects_KeepsPending(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.VerifyPasswordFunc = func(_ context.Context, username, _ string) (ports.PasswordResult, error) {
		return ports.PasswordResult{Challenge: &domainauth.PendingChallenge{
			Kind:     domainauth.ChallengeNewPasswordRequired,
			Username: username,
		}}, nil
	}
	provider.CompleteNewPasswordFunc = func(_ context.Context, _ domainauth.PendingChallenge, _ string) (domainauth.Identity, error) {
		return domainauth.Identity{}, apperrors.PasswordPolicy("Password does not meet the policy.")
	}
	svc, _, pending := newAuthService(provider)

	result, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "fresh@example.com",
		Password: "temp",
	})
	require.NoError(t, err)

	_, err = svc.CompleteChallenge(context.Background(), CompleteChallengeInput{
		ChallengeToken: result.ChallengeToken,
		NewPassword:    "short",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPasswordPolicy(err))

	_, err = pending.GetPending(context.Background(), result.ChallengeToken)
	assert.NoError(t, err, "a rejected password keeps the continuation for another try")
}

func TestGetSession_Expired(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, sessions, _ := newAuthService(provider)

	sess := domainauth.Session{
		ID:        "sid-1",
		Username:  "user@example.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, sessions.Save(context.Background(), sess))

	_, err := svc.GetSession(context.Background(), "sid-1")
	require.Error(t, err)
	assert.Equal(t, 0, sessions.Len(), "expired session is cleaned up")
}

func TestLogout_DeletesSessionAndSignsOut(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, sessions, _ := newAuthService(provider)

	result, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "user@example.com",
		Password: "pw",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Session.ID))
	assert.Equal(t, 0, sessions.Len())
	assert.Equal(t, 1, provider.SignOutCalls)

	// Second logout is a no-op.
	require.NoError(t, svc.Logout(context.Background(), result.Session.ID))
	assert.Equal(t, 1, provider.SignOutCalls)
}

func TestChangePassword_UsesSessionToken(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.DefaultIdentity = &domainauth.Identity{
		Username:    "user@example.com",
		AccessToken: "tok-77",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	var gotToken string
	provider.ChangePasswordFunc = func(_ context.Context, in ports.ChangePasswordInput) error {
		gotToken = in.AccessToken
		return nil
	}
	svc, _, _ := newAuthService(provider)

	result, err := svc.PasswordLogin(context.Background(), PasswordLoginInput{
		Username: "user@example.com",
		Password: "pw",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), ChangePasswordInput{
		SessionID:   result.Session.ID,
		OldPassword: "pw",
		NewPassword: "n3w-Passw0rd!",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok-77", gotToken)
}
