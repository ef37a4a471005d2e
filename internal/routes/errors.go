package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/l8tefuel-api/internal"
)

func abortWithError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, internal.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message + " not found"})
	case errors.Is(err, internal.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already registered"})
	default:
		log.Printf("error while handling %s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return 0, false
	}
	return id, true
}
