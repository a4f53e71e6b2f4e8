package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api/endpoints"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/relay"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, svc endpoints.Services, forwarder *relay.Forwarder) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods: []string{
			"GET",
			"POST",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Content-Type",
		},
		AllowCredentials:          false,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	api.MountGroup(r, api.GroupConfig{},
		endpoints.HealthModule(),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		endpoints.TimesModule(svc),
		endpoints.CountdownModule(svc, time.Second),
	)

	// relay paths include "/", so mount last
	api.MountGroup(r, api.GroupConfig{},
		endpoints.RelayModule(forwarder),
	)
}
