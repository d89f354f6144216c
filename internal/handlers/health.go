package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carmarket-backend/internal/models"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
