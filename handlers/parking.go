package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campuspark/services"
)

// GetZones 查詢所有停車分區與可用車位統計
func GetZones(c *gin.Context) {
	zones, err := services.GetZones()
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", zones)
}

// GetZoneAvailability 查詢分區內的可用車位，支援 ?floor= 過濾
func GetZoneAvailability(c *gin.Context) {
	zoneID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的分區 ID", "ERR_INVALID_ID")
		return
	}
	floor := c.Query("floor")

	zone, spots, err := services.GetZoneAvailability(zoneID, floor)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"zone":  zone,
		"spots": spots,
	})
}
