package api

// swagger:model api.ChangePasswordRequest
type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"required" example:"a@x.com"`
	OldPassword string `json:"oldPassword" validate:"required" example:"pw1"`
	NewPassword string `json:"newPassword" validate:"required" example:"pw2"`
}
