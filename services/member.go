package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"campuspark/database"
	"campuspark/models"
	"campuspark/utils"
)

// RegisterMember 註冊會員，密碼以 bcrypt 哈希後儲存，預設等級 iron
func RegisterMember(member *models.Member) error {
	if member.Role == "" {
		member.Role = "user"
	}
	if member.MemberTier == "" {
		member.MemberTier = models.TierIron
	}

	hashedPassword, err := utils.HashPassword(member.Password)
	if err != nil {
		return internalError("密碼處理失敗", err)
	}
	member.Password = hashedPassword

	if err := database.DB.Create(member).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return conflictError("ERR_EMAIL_EXISTS", "此 Email 已被註冊")
		}
		return internalError("註冊失敗", err)
	}

	log.Printf("Member registered: id=%d email=%s tier=%s", member.MemberID, member.Email, member.MemberTier)
	return nil
}

// LoginMember 以 Email 與密碼登入，成功回傳會員資料
func LoginMember(email, password string) (*models.Member, error) {
	var member models.Member
	if err := database.DB.Where("email = ?", email).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 登入失敗不區分帳號不存在與密碼錯誤
			return nil, forbiddenError("ERR_INVALID_CREDENTIALS", "Email 或密碼錯誤")
		}
		return nil, internalError("登入失敗", err)
	}

	if !utils.CheckPasswordHash(password, member.Password) {
		log.Printf("Failed login attempt for email %s", email)
		return nil, forbiddenError("ERR_INVALID_CREDENTIALS", "Email 或密碼錯誤")
	}

	log.Printf("Member %d logged in", member.MemberID)
	return &member, nil
}

// GetMemberByID 查詢會員
func GetMemberByID(id int) (*models.Member, error) {
	var member models.Member
	if err := database.DB.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_MEMBER_NOT_FOUND", "找不到會員資料")
		}
		return nil, fmt.Errorf("failed to get member %d: %w", id, err)
	}
	return &member, nil
}
