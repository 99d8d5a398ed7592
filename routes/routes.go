package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"campuspark/handlers"
	"campuspark/utils"
)

// AuthMiddleware 驗證 JWT token，並提取 member_id 和 role
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "缺少 Authorization 標頭",
				"error":   "Authorization header is required",
				"code":    "ERR_NO_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 Authorization 格式",
				"error":   "Authorization header must be in the format 'Bearer <token>'",
				"code":    "ERR_INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 明確要求檢查 exp 字段
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return utils.JWTSecret, nil
		}, jwt.WithExpirationRequired())

		if err != nil {
			log.Printf("Token parsing error: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "token 已過期",
					"error":   "Token has expired",
					"code":    "ERR_TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的 token",
					"error":   err.Error(),
					"code":    "ERR_INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 token 內容",
				"error":   "Invalid token claims or token is not valid",
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		// 確認 exp 字段存在
		if _, ok := claims["exp"].(float64); !ok {
			log.Printf("Missing or invalid exp in token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 token 內容",
				"error":   "Missing or invalid exp claim",
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		// 確認 member_id 字段
		memberID, ok := claims["member_id"].(float64)
		if !ok {
			log.Printf("Missing or invalid member_id in token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的會員 ID",
				"error":   "Invalid member_id in token",
				"code":    "ERR_INVALID_MEMBER_ID",
			})
			c.Abort()
			return
		}

		// 確認 role 字段
		role, ok := claims["role"].(string)
		if !ok || (role != "user" && role != "admin") {
			log.Printf("Missing or invalid role in token: %v", role)
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色",
				"error":   "Invalid role in token",
				"code":    "ERR_INVALID_ROLE",
			})
			c.Abort()
			return
		}

		log.Printf("Token verified for member_id: %d, role: %s, exp=%v, now=%v",
			int(memberID), role, claims["exp"], time.Now().Unix())
		c.Set("member_id", int(memberID))
		c.Set("role", role)

		c.Next()
	}
}

// RoleMiddleware 檢查會員角色是否符合要求
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無法獲取角色資訊",
				"error":   "Role not found in context",
				"code":    "ERR_ROLE_NOT_FOUND",
			})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色類型",
				"error":   "Invalid role type",
				"code":    "ERR_INVALID_ROLE_TYPE",
			})
			c.Abort()
			return
		}

		// 允許 admin 角色訪問所有端點
		if roleStr == "admin" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedRole := range allowedRoles {
			if roleStr == allowedRole {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  false,
				"message": "權限不足",
				"error":   "Insufficient role permissions",
				"code":    "ERR_INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func Path(router *gin.RouterGroup) {
	// 版本控制
	v1 := router.Group("/v1")
	{
		// 測試路由
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// 會員路由
		members := v1.Group("/members")
		{
			// 公開路由：不需要 token 驗證
			members.POST("/register", handlers.RegisterMember) // 註冊會員
			members.POST("/login", handlers.LoginMember)       // 登入會員並獲取 token

			// 受保護路由：需要 token 驗證
			membersWithAuth := members.Group("")
			membersWithAuth.Use(AuthMiddleware())
			{
				membersWithAuth.GET("/profile", handlers.GetMemberProfile) // 查看個人資料
			}
		}

		// 車輛路由
		vehicles := v1.Group("/vehicles")
		vehicles.Use(AuthMiddleware())
		{
			vehicles.GET("", handlers.GetMyVehicles)                // 查詢自己的車輛
			vehicles.POST("", handlers.CreateVehicle)               // 新增車輛
			vehicles.PUT("/:id", handlers.UpdateVehicle)            // 更新車輛
			vehicles.DELETE("/:id", handlers.DeleteVehicle)         // 刪除車輛
			vehicles.PUT("/:id/default", handlers.SetDefaultVehicle) // 設定預設車輛
		}

		// 停車分區路由
		parking := v1.Group("/parking")
		parking.Use(AuthMiddleware())
		{
			parking.GET("/zones", handlers.GetZones)                             // 查詢所有分區
			parking.GET("/zones/:id/availability", handlers.GetZoneAvailability) // 查詢分區可用車位
		}

		// 預約路由
		bookings := v1.Group("/bookings")
		bookings.Use(AuthMiddleware())
		{
			bookings.POST("", handlers.CreateBooking)            // 建立預約
			bookings.GET("/active", handlers.GetActiveBooking)   // 查詢進行中的預約
			bookings.GET("/history", handlers.GetBookingHistory) // 查詢預約歷史
			bookings.PUT("/:id/checkin", handlers.CheckIn)       // 報到
			bookings.PUT("/:id/checkout", handlers.CheckOut)     // 結帳離場
			bookings.DELETE("/:id", handlers.CancelBooking)      // 取消預約

			// 管理員專屬路由
			bookings.POST("/qr/validate", RoleMiddleware("admin"), handlers.ValidateQRPass)            // 閘門驗證通行碼
			bookings.PUT("/:id/status", RoleMiddleware("admin"), handlers.AdminUpdateBookingStatus)    // 強制變更狀態
			bookings.POST("/auto-cancel", RoleMiddleware("admin"), handlers.RunAutoCancel)             // 手動觸發清掃
		}

		// 通知路由
		notifications := v1.Group("/notifications")
		notifications.Use(AuthMiddleware())
		{
			notifications.GET("", handlers.GetNotifications)          // 查詢通知
			notifications.PUT("/:id/read", handlers.MarkNotificationRead) // 標記已讀
		}
	}
}
