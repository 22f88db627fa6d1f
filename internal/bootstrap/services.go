package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"

	"github.com/cloudboard/cloudboard/config"
	"github.com/cloudboard/cloudboard/internal/adapters/dynamo"
	"github.com/cloudboard/cloudboard/internal/reporting"
	"github.com/cloudboard/cloudboard/internal/service"
)

// ServiceDeps contains shared dependencies for building services.
type ServiceDeps struct {
	Config      *config.AppConfig
	AWSConfig   aws.Config
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Services holds the application service layer.
type Services struct {
	Auth      *service.AuthService
	Albums    *service.AlbumService
	Users     *service.UserService
	Costs     *reporting.CostService
	Resources *reporting.ResourceService
}

// NewServices builds all application services from shared dependencies.
// Report services are omitted when reporting is disabled.
func NewServices(deps *ServiceDeps) (*Services, error) {
	auth, err := BuildAuth(AuthDeps{
		Auth:        deps.Config.Auth,
		AWSConfig:   deps.AWSConfig,
		RedisClient: deps.RedisClient,
		Logger:      deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	albumRepo, err := dynamo.NewAlbumRepo(deps.AWSConfig, deps.Config.Dynamo.AlbumTable)
	if err != nil {
		return nil, fmt.Errorf("build album repository: %w", err)
	}

	svcs := &Services{
		Auth:   auth.Service,
		Albums: service.NewAlbumService(albumRepo),
		Users:  service.NewUserService(auth.Directory),
	}

	if deps.Config.Reports.Enabled {
		svcs.Costs = reporting.NewCostService(deps.AWSConfig)
		svcs.Resources = reporting.NewResourceService(deps.AWSConfig)
	}

	return svcs, nil
}
