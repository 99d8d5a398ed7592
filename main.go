package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"campuspark/database"
	"campuspark/models"
	"campuspark/routes"
	"campuspark/services"
	"campuspark/utils"
)

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 初始化 Redis（QR 通行碼儲存，失敗時降級運行）
	database.InitRedis()

	// 執行資料庫遷移
	database.DB.AutoMigrate(
		&models.Member{},
		&models.ParkingZone{},
		&models.ParkingSpot{},
		&models.Booking{},
		&models.Vehicle{},
		&models.Notification{},
	)
	log.Println("Database migration completed")

	// 確保預設管理員存在
	ensureAdminExists()

	// 播種分區與車位目錄
	seedParkingCatalog()

	// 設置 Gin 模式
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	// Prometheus 指標
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api)
	}

	// 啟動定時任務
	c := cron.New()

	// 逾期未報到預約清掃（每 5 分鐘執行一次）
	_, err := c.AddFunc("*/5 * * * *", func() {
		if _, err := services.AutoCancelExpiredBookings(); err != nil {
			log.Printf("Failed to auto-cancel expired bookings: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule auto-cancel cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	// 啟動後先補跑一次，處理停機期間逾期的預約
	time.AfterFunc(5*time.Second, func() {
		log.Println("Running startup auto-cancel sweep...")
		if _, err := services.AutoCancelExpiredBookings(); err != nil {
			log.Printf("Startup auto-cancel sweep failed: %v", err)
		}
	})

	// 啟動伺服器
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists 檢查並創建預設管理員
func ensureAdminExists() {
	var admin models.Member
	if err := database.DB.Where("role = ?", "admin").First(&admin).Error; err == nil {
		log.Printf("Admin already exists: email=%s", admin.Email)
		return
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@campuspark.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin1234"
		log.Println("ADMIN_PASSWORD not set, using default (change it in production)")
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin = models.Member{
		Name:       "系統管理員",
		Email:      adminEmail,
		Password:   hashedPassword,
		Role:       "admin",
		MemberTier: models.TierIron,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Printf("Default admin created: email=%s", admin.Email)
}

// seedParkingCatalog 播種預設分區與車位，已有資料時跳過
func seedParkingCatalog() {
	var zoneCount int64
	if err := database.DB.Model(&models.ParkingZone{}).Count(&zoneCount).Error; err != nil {
		log.Fatalf("Failed to count parking zones: %v", err)
	}
	if zoneCount > 0 {
		log.Printf("Parking catalog already seeded: %d zones", zoneCount)
		return
	}

	zones := []struct {
		Name     string
		Building string
		Floors   []string
		PerFloor int
	}{
		{"A區", "工學院", []string{"1F", "2F"}, 10},
		{"B區", "圖書館", []string{"1F"}, 15},
		{"C區", "學生宿舍", []string{"B1", "1F"}, 12},
	}

	for _, z := range zones {
		zone := models.ParkingZone{ZoneName: z.Name, Building: z.Building}
		if err := database.DB.Create(&zone).Error; err != nil {
			log.Fatalf("Failed to seed zone %s: %v", z.Name, err)
		}
		for _, floor := range z.Floors {
			for i := 1; i <= z.PerFloor; i++ {
				spot := models.ParkingSpot{
					ZoneID:     zone.ZoneID,
					SpotNumber: fmt.Sprintf("%s-%02d", floor, i),
					Floor:      floor,
					Status:     models.SpotAvailable,
				}
				if err := database.DB.Create(&spot).Error; err != nil {
					log.Fatalf("Failed to seed spot %s in zone %s: %v", spot.SpotNumber, z.Name, err)
				}
			}
		}
		log.Printf("Seeded zone %s (%s): %d spots", z.Name, z.Building, len(z.Floors)*z.PerFloor)
	}
}
