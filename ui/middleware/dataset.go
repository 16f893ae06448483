package middleware

import (
	"context"
	"log"
	"net/http"

	"gtdash/domain/incident"

	"github.com/gin-gonic/gin"
)

// DatasetKey is the gin context key holding the cleaned dataset
const DatasetKey = "dataset"

// DatasetSource yields the process-wide cleaned dataset
type DatasetSource interface {
	Dataset(ctx context.Context) (*incident.Dataset, error)
}

// RequireDataset resolves the dataset before the handler runs and answers
// 503 when it could not be built
func RequireDataset(source DatasetSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ds, err := source.Dataset(c.Request.Context())
		if err != nil {
			log.Printf("[RequireDataset] Dataset unavailable: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "dataset unavailable", "details": err.Error()})
			return
		}
		c.Set(DatasetKey, ds)
		c.Next()
	}
}

// Dataset returns the dataset stored by RequireDataset
func Dataset(c *gin.Context) *incident.Dataset {
	ds, _ := c.MustGet(DatasetKey).(*incident.Dataset)
	return ds
}
