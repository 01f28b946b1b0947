//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/heliowatt/heliowatt/internal/bootstrap"
	"github.com/heliowatt/heliowatt/internal/domain/auth"
	"github.com/heliowatt/heliowatt/internal/domain/export"
	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/internal/domain/session"
	"github.com/heliowatt/heliowatt/internal/domain/simulation"
	"github.com/heliowatt/heliowatt/internal/infra/config"
	"github.com/heliowatt/heliowatt/internal/infra/geocode/nominatim"
	"github.com/heliowatt/heliowatt/internal/infra/solar/pvwatts"
	httpiface "github.com/heliowatt/heliowatt/internal/interface/http"
	"github.com/heliowatt/heliowatt/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideAuthRepository,
		provideGeocodeClient,
		provideSolarClient,
		provideSessionConfig,
		provideSessionStore,
		provideExportStorage,
		auth.NewService,
		location.NewService,
		session.NewService,
		simulation.NewService,
		export.NewService,
		wire.Bind(new(location.GeocodeClient), new(*nominatim.Client)),
		wire.Bind(new(simulation.Estimator), new(*pvwatts.Client)),
		wire.Bind(new(simulation.Resolver), new(location.Service)),
		wire.Bind(new(simulation.InputRecorder), new(session.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
