package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/game"
	"github.com/ericogr/dnd-combat-sim/internal/service"
)

// Simulator is the service surface the handlers use.
type Simulator interface {
	Catalog() *catalog.Catalog
	RunSimulation(ctx context.Context, req service.SimulationRequest) (*service.SimulationReport, error)
	RunBatch(ctx context.Context, req service.BatchRequest) (*service.BatchReport, error)
	GetSimulation(id string) (*game.SimulationRecord, error)
	ListSimulations(limit int) ([]game.SimulationRecord, error)
	GetBatch(id string) (*game.BatchRecord, error)
}

// SimulationHandler groups all simulation-related HTTP handlers.
type SimulationHandler struct {
	sim Simulator
}

func NewSimulationHandler(sim Simulator) *SimulationHandler {
	return &SimulationHandler{sim: sim}
}

// Register mounts every route on router.
func (h *SimulationHandler) Register(router gin.IRouter) {
	router.GET(constants.RouteHealth, Health)

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.GET(constants.RouteCatalog, h.GetCatalog)
		apiRoutes.GET(constants.RouteDifficulty, h.GetDifficulty)
		apiRoutes.POST(constants.RouteSimulations, h.RunSimulation)
		apiRoutes.GET(constants.RouteSimulations, h.ListSimulations)
		apiRoutes.GET(constants.RouteSimulationByID, h.GetSimulation)
		apiRoutes.POST(constants.RouteBatches, h.RunBatch)
		apiRoutes.GET(constants.RouteBatchByID, h.GetBatch)
	}
}
