package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/version"
)

// Version reports the build metadata set via -ldflags.
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
		"dirty":   version.IsDirty(),
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}
