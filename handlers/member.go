package handlers

import (
	"log"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"campuspark/models"
	"campuspark/services"
	"campuspark/utils"
)

// 電子郵件驗證 regex
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// 電話驗證字串 (例如：10 位數)
var phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

// RegisterMember 註冊會員
func RegisterMember(c *gin.Context) {
	var member models.Member
	if err := c.ShouldBindJSON(&member); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "ERR_INVALID_INPUT")
		return
	}

	// 驗證電子郵件
	if member.Email == "" || !emailRegex.MatchString(member.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址", "ERR_INVALID_EMAIL")
		return
	}

	// 驗證電話
	if member.Phone != "" && !phoneRegex.MatchString(member.Phone) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電話號碼（10位數字）", "ERR_INVALID_PHONE")
		return
	}

	// 驗證密碼（最少 8 個字元，至少一個字母和一個數字）
	if len(member.Password) < 8 ||
		!regexp.MustCompile(`[a-zA-Z]`).MatchString(member.Password) ||
		!regexp.MustCompile(`[0-9]`).MatchString(member.Password) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字", "ERR_WEAK_PASSWORD")
		return
	}

	// 註冊端點不允許自行指定角色與等級
	member.Role = "user"
	member.MemberTier = models.TierIron
	member.Points = 0

	if err := services.RegisterMember(&member); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "註冊成功", member.ToResponse())
}

// LoginMember 登入會員並取得 JWT token
func LoginMember(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供 Email 與密碼", "ERR_INVALID_INPUT")
		return
	}

	member, err := services.LoginMember(input.Email, input.Password)
	if err != nil {
		// 登入失敗一律回 401
		svcErr := services.AsServiceError(err)
		ErrorResponse(c, http.StatusUnauthorized, svcErr.Message, svcErr.Code)
		return
	}

	token, err := utils.GenerateToken(member.MemberID, member.Role)
	if err != nil {
		log.Printf("Failed to generate token for member %d: %v", member.MemberID, err)
		ErrorResponse(c, http.StatusInternalServerError, "登入失敗", "ERR_TOKEN_GENERATION")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token":  token,
		"member": member.ToResponse(),
	})
}

// GetMemberProfile 查詢自己的會員資料
func GetMemberProfile(c *gin.Context) {
	memberID := c.GetInt("member_id")

	member, err := services.GetMemberByID(memberID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", member.ToResponse())
}
