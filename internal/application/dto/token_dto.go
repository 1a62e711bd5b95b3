package dto

// TokenRequest 令牌颁发请求 DTO：客户端凭证换取访问令牌。
type TokenRequest struct {
	ClientID     string `json:"client_id" validate:"required,min=1,max=128"`
	ClientSecret string `json:"client_secret" validate:"required,min=1"`
}

// TokenResponse 令牌响应 DTO
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IssuedAt    int64  `json:"issued_at"`
}
