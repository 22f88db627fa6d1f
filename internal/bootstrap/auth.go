package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"

	"github.com/cloudboard/cloudboard/config"
	"github.com/cloudboard/cloudboard/internal/adapters/cognito"
	"github.com/cloudboard/cloudboard/internal/adapters/devauth"
	redisadapter "github.com/cloudboard/cloudboard/internal/adapters/redis"
	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	"github.com/cloudboard/cloudboard/internal/ports"
	"github.com/cloudboard/cloudboard/internal/service"
)

// AuthDeps contains dependencies for building the auth stack.
type AuthDeps struct {
	Auth        config.AuthConfig
	AWSConfig   aws.Config
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents bundles the auth service with the user directory that
// backs it. Both sides talk to the same identity provider.
type AuthComponents struct {
	Service   *service.AuthService
	Directory ports.UserDirectory
}

// BuildAuth creates the identity provider and user directory for the
// configured auth mode and wires them to Redis-backed session state.
func BuildAuth(deps AuthDeps) (AuthComponents, error) {
	provider, directory, err := buildIdentity(deps)
	if err != nil {
		return AuthComponents{}, err
	}

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:"),
		Pending:  redisadapter.NewPendingStore(deps.RedisClient),
	})

	return AuthComponents{Service: svc, Directory: directory}, nil
}

// BuildDirectory creates just the user directory for the configured auth
// mode. Used by the admin CLI, which does not need session state.
func BuildDirectory(deps AuthDeps) (ports.UserDirectory, error) {
	_, directory, err := buildIdentity(deps)
	return directory, err
}

func buildIdentity(deps AuthDeps) (ports.IdentityProvider, ports.UserDirectory, error) {
	switch deps.Auth.Mode {
	case config.AuthModeCognito:
		provider, err := cognito.NewProvider(deps.AWSConfig, cognito.ProviderConfig{
			ClientID: deps.Auth.Cognito.ClientID,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build cognito provider: %w", err)
		}
		directory, err := cognito.NewDirectory(deps.AWSConfig, cognito.DirectoryConfig{
			UserPoolID: deps.Auth.Cognito.UserPoolID,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build cognito directory: %w", err)
		}
		return provider, directory, nil

	case config.AuthModeMock:
		if deps.Logger != nil {
			deps.Logger.Warn("using in-memory dev auth provider", "mode", deps.Auth.Mode)
		}
		provider, err := devauth.NewProvider(devauth.Config{
			Users: []devauth.UserConfig{
				{
					Email:    deps.Auth.DevAuth.AdminEmail,
					Password: deps.Auth.DevAuth.AdminPassword,
					Groups:   []string{domainauth.AdminGroup},
				},
				{
					Email:    deps.Auth.DevAuth.UserEmail,
					Password: deps.Auth.DevAuth.UserPassword,
					Groups:   []string{"Staff"},
				},
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		return provider, provider, nil

	default:
		return nil, nil, fmt.Errorf("unsupported auth mode %q", deps.Auth.Mode)
	}
}
