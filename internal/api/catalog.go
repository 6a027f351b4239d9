package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/constants"
)

// GetCatalog lists the actions, characters, monsters, parties and
// encounters a request may reference.
func (h *SimulationHandler) GetCatalog(c *gin.Context) {
	c.Header(constants.CacheControlHeader, constants.CacheControlNoCache)
	c.JSON(http.StatusOK, h.sim.Catalog().Snapshot())
}

// GetDifficulty rates ?party= against ?encounter=.
func (h *SimulationHandler) GetDifficulty(c *gin.Context) {
	party, encounter := c.Query("party"), c.Query("encounter")
	if party == "" || encounter == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrPartyEncounterRequired})
		return
	}
	d, err := h.sim.Catalog().Difficulty(party, encounter)
	if errors.Is(err, catalog.ErrUnknownName) {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}
