package dto

// Data Transfer Objects for the signup / token handshake

// SignUpRequest: payload for requesting a confirmation code
type SignUpRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignUpResponse echoes the submitted identity. The code itself travels
// only through the notification channel, never in this response.
type SignUpResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for redeeming a confirmation code
type TokenRequest struct {
	Username         string `json:"username" binding:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=16"`
}

// TokenResponse: the minted access token
type TokenResponse struct {
	Access string `json:"access"`
}
