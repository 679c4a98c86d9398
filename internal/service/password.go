// File: internal/service/password.go
package service

import (
	"errors"

	"polly-relay/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost bcrypt 成本，與既有帳號的雜湊保持一致
const PasswordCost = 10

// MaxPasswordBytes bcrypt 可處理的最大長度
const MaxPasswordBytes = 72

var (
	// ErrInvalidCredentials 密碼比對失敗
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
)

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
func HashPassword(password string) (string, error) {
	if err := CheckPasswordLength(password); err != nil {
		return "", err
	}
	hashBytes, err := bcryptGenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPasswordLength 以 byte 計算，多位元組字元也算在內
func CheckPasswordLength(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// ComparePassword 比對明文密碼與 bcrypt 哈希，成功回傳 nil，失敗則回傳錯誤
func ComparePassword(hash, password string) error {
	return bcryptCompareHashAndPassword([]byte(hash), []byte(password))
}

// AuthenticateUser 驗證使用者密碼，不符時回傳 ErrInvalidCredentials
func AuthenticateUser(user *model.User, password string) error {
	if user == nil || user.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
