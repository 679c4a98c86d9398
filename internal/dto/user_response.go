// File: internal/dto/user_response.go
package dto

import "polly-relay/internal/model"

// swagger:model dto.UserResponse
type UserResponse struct {
	ID    int    `json:"id" example:"1"`
	Name  string `json:"name" example:"Ann"`
	Email string `json:"email" example:"a@x.com"`
}

// NewUserResponse 只輸出公開欄位，密碼雜湊不會離開伺服器
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}
