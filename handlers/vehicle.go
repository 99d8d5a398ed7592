package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campuspark/models"
	"campuspark/services"
)

// GetMyVehicles 查詢自己的車輛清單
func GetMyVehicles(c *gin.Context) {
	memberID := c.GetInt("member_id")

	vehicles, err := services.GetMyVehicles(memberID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	responses := make([]models.VehicleResponse, len(vehicles))
	for i := range vehicles {
		responses[i] = vehicles[i].ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// CreateVehicle 新增車輛
func CreateVehicle(c *gin.Context) {
	memberID := c.GetInt("member_id")

	var input struct {
		LicensePlate string `json:"license_plate" binding:"required"`
		Brand        string `json:"brand"`
		Model        string `json:"model"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供 license_plate", "ERR_INVALID_INPUT")
		return
	}

	vehicle := models.Vehicle{
		MemberID:     memberID,
		LicensePlate: input.LicensePlate,
		Brand:        input.Brand,
		Model:        input.Model,
	}
	if err := services.CreateVehicle(&vehicle); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "新增車輛成功", vehicle.ToResponse())
}

// UpdateVehicle 更新車輛資料
func UpdateVehicle(c *gin.Context) {
	memberID := c.GetInt("member_id")
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛 ID", "ERR_INVALID_ID")
		return
	}

	var updatedFields map[string]interface{}
	if err := c.ShouldBindJSON(&updatedFields); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "ERR_INVALID_INPUT")
		return
	}

	if err := services.UpdateVehicle(memberID, vehicleID, updatedFields); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新車輛成功", nil)
}

// DeleteVehicle 刪除車輛
func DeleteVehicle(c *gin.Context) {
	memberID := c.GetInt("member_id")
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛 ID", "ERR_INVALID_ID")
		return
	}

	if err := services.DeleteVehicle(memberID, vehicleID); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "刪除車輛成功", nil)
}

// SetDefaultVehicle 設定預設車輛
func SetDefaultVehicle(c *gin.Context) {
	memberID := c.GetInt("member_id")
	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛 ID", "ERR_INVALID_ID")
		return
	}

	if err := services.SetDefaultVehicle(memberID, vehicleID); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "設定預設車輛成功", nil)
}
