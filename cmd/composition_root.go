package cmd

import (
	"log/slog"

	"tripmgr/internal/adapters/out/postgres"
	"tripmgr/internal/adapters/out/postgres/executionrepo"
	"tripmgr/internal/adapters/out/trackapi"
	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/application/usecases/queries"
	"tripmgr/internal/core/domain/services"
	"tripmgr/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	executionRepo *executionrepo.GormExecutionRepository
	gateway       *trackapi.Client
	logger        *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	environment := trackapi.EnvironmentProduction
	if config.TrackAPITraining == "true" || config.TrackAPITraining == "1" {
		environment = trackapi.EnvironmentTraining
	}

	gateway, err := trackapi.NewClient(
		config.TrackAPIURL,
		trackapi.Credentials{
			Username:      config.TrackAPIUser,
			Password:      config.TrackAPIPass,
			LicenseNumber: config.TrackAPILicense,
		},
		environment,
		trackapi.DefaultRetryPolicy(),
		logger,
	)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		executionRepo: executionrepo.NewGormExecutionRepository(gormDB),
		gateway:       gateway,
		logger:        logger,
	}, nil
}

func (c *CompositionRoot) tripUoWFactory() commands.TripUoWFactory {
	return FuncTripUoWFactory(func() commands.TripUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateTripCommandHandler() commands.CreateTripCommandHandler {
	return commands.NewCreateTripCommandHandler(c.tripUoWFactory())
}

func (c *CompositionRoot) CreateEnqueueTripExecutionCommandHandler() commands.EnqueueTripExecutionCommandHandler {
	return commands.NewEnqueueTripExecutionCommandHandler(c.tripUoWFactory(), c.executionRepo)
}

func (c *CompositionRoot) CreateExecuteTripCommandHandler() (commands.ExecuteTripCommandHandler, error) {
	processor, err := services.NewOrderProcessor(c.gateway, c.logger)
	if err != nil {
		return commands.ExecuteTripCommandHandler{}, err
	}

	builder, err := services.NewManifestBuilder(c.gateway, c.logger)
	if err != nil {
		return commands.ExecuteTripCommandHandler{}, err
	}

	return commands.NewExecuteTripCommandHandler(
		c.tripUoWFactory(),
		c.executionRepo,
		c.gateway,
		processor,
		builder,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetExecutionStatusQueryHandler() queries.GetExecutionStatusQueryHandler {
	return queries.NewGetExecutionStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	executeHandler, err := c.CreateExecuteTripCommandHandler()
	if err != nil {
		return nil, err
	}

	return jobs.NewJobManager(c.executionRepo, executeHandler, c.logger), nil
}

type FuncTripUoWFactory func() commands.TripUoW

func (f FuncTripUoWFactory) Create() commands.TripUoW {
	return f()
}
