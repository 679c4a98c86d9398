// File: internal/dto/register_response.go
package dto

// swagger:model dto.RegisterResponse
type RegisterResponse struct {
	Message string       `json:"message" example:"Registered successfully"`
	User    UserResponse `json:"user"`
}
