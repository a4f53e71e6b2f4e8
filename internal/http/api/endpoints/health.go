package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api"
)

func HealthModule() api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	})
}
