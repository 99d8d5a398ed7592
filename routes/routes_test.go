package routes

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisteredPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	Path(api)

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/members/register",
		"POST /api/v1/members/login",
		"GET /api/v1/members/profile",
		"GET /api/v1/vehicles",
		"PUT /api/v1/vehicles/:id/default",
		"GET /api/v1/parking/zones",
		"GET /api/v1/parking/zones/:id/availability",
		"POST /api/v1/bookings",
		"GET /api/v1/bookings/active",
		"GET /api/v1/bookings/history",
		"PUT /api/v1/bookings/:id/checkin",
		"PUT /api/v1/bookings/:id/checkout",
		"DELETE /api/v1/bookings/:id",
		"POST /api/v1/bookings/qr/validate",
		"PUT /api/v1/bookings/:id/status",
		"GET /api/v1/notifications",
		"PUT /api/v1/notifications/:id/read",
	} {
		assert.True(t, registered[want], want)
	}
}
