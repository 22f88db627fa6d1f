package cognito

// Package cognito adapts AWS Cognito user pools to the identity ports.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// authAPI is the slice of the Cognito client the provider uses. The concrete
// *cip.Client satisfies it; tests substitute a fake.
type authAPI interface {
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, opts ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, opts ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	ChangePassword(ctx context.Context, in *cip.ChangePasswordInput, opts ...func(*cip.Options)) (*cip.ChangePasswordOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, opts ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// Provider implements ports.IdentityProvider against a Cognito user pool
// app client using the USER_PASSWORD_AUTH flow.
type Provider struct {
	client   authAPI
	clientID string
	now      func() time.Time
}

// ProviderConfig holds configuration for the Cognito provider.
type ProviderConfig struct {
	ClientID string
}

// NewProvider creates a provider over an already-configured AWS config.
func NewProvider(cfg aws.Config, pc ProviderConfig) (*Provider, error) {
	if pc.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	return &Provider{
		client:   cip.NewFromConfig(cfg),
		clientID: pc.ClientID,
		now:      time.Now,
	}, nil
}

var _ ports.IdentityProvider = (*Provider)(nil)

func (p *Provider) VerifyPassword(ctx context.Context, username, password string) (ports.PasswordResult, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return ports.PasswordResult{}, classify(err, "initiate auth")
	}

	if out.ChallengeName != "" {
		// USERNAME may be rewritten to the pool's internal id in the
		// challenge parameters; the follow-up call must echo that form.
		challengeUser := username
		if u, ok := out.ChallengeParameters["USER_ID_FOR_SRP"]; ok && u != "" {
			challengeUser = u
		}
		return ports.PasswordResult{Challenge: &domainauth.PendingChallenge{
			Kind:            domainauth.ChallengeKind(out.ChallengeName),
			Username:        challengeUser,
			ProviderSession: aws.ToString(out.Session),
		}}, nil
	}

	identity, err := p.identityFromResult(out.AuthenticationResult, username)
	if err != nil {
		return ports.PasswordResult{}, err
	}
	return ports.PasswordResult{Identity: &identity}, nil
}

func (p *Provider) CompleteNewPassword(ctx context.Context, pending domainauth.PendingChallenge, newPassword string) (domainauth.Identity, error) {
	out, err := p.client.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(p.clientID),
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		Session:       aws.String(pending.ProviderSession),
		ChallengeResponses: map[string]string{
			"USERNAME":     pending.Username,
			"NEW_PASSWORD": newPassword,
		},
	})
	if err != nil {
		return domainauth.Identity{}, classify(err, "respond to auth challenge")
	}
	if out.ChallengeName != "" {
		return domainauth.Identity{}, apperrors.Provider(fmt.Sprintf("unexpected follow-up challenge %q", out.ChallengeName))
	}
	return p.identityFromResult(out.AuthenticationResult, pending.Username)
}

func (p *Provider) RequestReset(ctx context.Context, email string) error {
	_, err := p.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return classify(err, "forgot password")
	}
	return nil
}

func (p *Provider) ConfirmReset(ctx context.Context, in ports.ConfirmResetInput) error {
	_, err := p.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(in.Email),
		ConfirmationCode: aws.String(in.Code),
		Password:         aws.String(in.NewPassword),
	})
	if err != nil {
		return classify(err, "confirm forgot password")
	}
	return nil
}

func (p *Provider) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	_, err := p.client.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(in.AccessToken),
		PreviousPassword: aws.String(in.OldPassword),
		ProposedPassword: aws.String(in.NewPassword),
	})
	if err != nil {
		return classify(err, "change password")
	}
	return nil
}

func (p *Provider) SignOut(ctx context.Context, identity domainauth.Identity) error {
	_, err := p.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(identity.AccessToken),
	})
	if err != nil {
		return classify(err, "global sign out")
	}
	return nil
}

// identityFromResult folds the token set into a domain identity. Group
// membership rides in the access token claims.
func (p *Provider) identityFromResult(res *types.AuthenticationResultType, fallbackUsername string) (domainauth.Identity, error) {
	if res == nil || aws.ToString(res.AccessToken) == "" {
		return domainauth.Identity{}, apperrors.Provider("authentication result missing access token")
	}
	token := aws.ToString(res.AccessToken)
	claims, err := parseAccessClaims(token)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeProvider, "decode access token")
	}
	username := claims.Username
	if username == "" {
		username = fallbackUsername
	}
	return domainauth.Identity{
		Username:    username,
		Groups:      claims.Groups,
		AccessToken: token,
		ExpiresAt:   p.now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}, nil
}
