package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/logging"
	"github.com/ericogr/dnd-combat-sim/internal/service"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// runError maps a service error to a status and message.
func runError(c *gin.Context, err error, failed string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, service.ErrTooManyRuns):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrTooManyRuns, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{constants.JSONKeyError: constants.ErrSimulationTimedOut})
	default:
		logging.Error(failed, err, logging.Fields{constants.LogFieldPath: c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: failed})
	}
}

// RunSimulation runs one combat and returns the full report with its log.
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req service.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
		return
	}
	report, err := h.sim.RunSimulation(c.Request.Context(), req)
	if err != nil {
		runError(c, err, constants.ErrFailedRunSimulation)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListSimulations returns recent standalone simulations, newest first.
// Optional ?limit=N (default 20, max 100).
func (h *SimulationHandler) ListSimulations(c *gin.Context) {
	limit, ok := parseLimit(c.Query("limit"), defaultListLimit, maxListLimit)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidLimit})
		return
	}
	recs, err := h.sim.ListSimulations(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchSimulation})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(recs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchSimulation})
		return
	}
	if out == nil {
		out = []interface{}{}
	}
	c.JSON(http.StatusOK, out)
}

// GetSimulation returns a stored simulation by public ID.
func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	rec, err := h.sim.GetSimulation(c.Param("id"))
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrSimulationNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchSimulation})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchSimulation})
		return
	}
	c.JSON(http.StatusOK, out)
}

// RunBatch runs the same matchup many times and returns the aggregate.
func (h *SimulationHandler) RunBatch(c *gin.Context) {
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
		return
	}
	report, err := h.sim.RunBatch(c.Request.Context(), req)
	if err != nil {
		runError(c, err, constants.ErrFailedRunBatch)
		return
	}
	out, err := MarshalIntoSnakeTimestamps(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedRunBatch})
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetBatch returns a stored batch with its per-run summaries.
func (h *SimulationHandler) GetBatch(c *gin.Context) {
	rec, err := h.sim.GetBatch(c.Param("id"))
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBatchNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBatch})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBatch})
		return
	}
	c.JSON(http.StatusOK, out)
}
