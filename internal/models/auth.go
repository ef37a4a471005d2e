package models

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsAdmin     bool   `json:"is_admin"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CredentialsRequest struct {
	Username string `form:"username" binding:"required,max=50"`
	Password string `form:"password" binding:"required"`
}

type NewPasswordRequest struct {
	NewPassword string `form:"new_password" binding:"required"`
}
