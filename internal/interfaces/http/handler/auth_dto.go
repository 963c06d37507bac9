package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/storefront/backend/internal/application/identity"
)

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for customer sign up
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email,max=100"`
	Password       string `json:"password" binding:"required,min=8,max=128"`
	FirstName      string `json:"first_name" binding:"required,max=100"`
	LastName       string `json:"last_name" binding:"required,max=100"`
	DocumentType   string `json:"document_type" binding:"omitempty,max=20"`
	DocumentNumber string `json:"document_number" binding:"omitempty,max=30"`
	Gender         string `json:"gender" binding:"omitempty,max=20"`
	Address        string `json:"address" binding:"omitempty,max=255"`
	Phone          string `json:"phone" binding:"omitempty,max=30"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest carries a refresh token for refresh and logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// =====================
// Auth Response DTOs
// =====================

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// UserResponse represents an account in auth responses
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DisplayName    string     `json:"display_name"`
	DocumentType   string     `json:"document_type,omitempty"`
	DocumentNumber string     `json:"document_number,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Address        string     `json:"address,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// LogoutResponse reports whether the refresh token was still active
type LogoutResponse struct {
	Message string `json:"message"`
	Revoked bool   `json:"revoked"`
}

func toUserResponse(u appidentity.UserInfo) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DisplayName:    u.DisplayName,
		DocumentType:   u.DocumentType,
		DocumentNumber: u.DocumentNumber,
		Gender:         u.Gender,
		Address:        u.Address,
		Phone:          u.Phone,
		LastLoginAt:    u.LastLoginAt,
	}
}
