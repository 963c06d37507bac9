package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// RegisterInput contains the data for a new customer account
type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	DocumentType   string
	DocumentNumber string
	Gender         string
	Address        string
	Phone          string
}

func (in RegisterInput) person() identity.Person {
	return identity.Person{
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		Gender:         in.Gender,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Address:        in.Address,
		Phone:          in.Phone,
	}
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains the public view of an account
type UserInfo struct {
	ID             uuid.UUID
	Email          string
	Role           string
	FirstName      string
	LastName       string
	DisplayName    string
	DocumentType   string
	DocumentNumber string
	Gender         string
	Address        string
	Phone          string
	LastLoginAt    *time.Time
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// ToUserInfo converts a domain user to UserInfo
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role.String(),
		FirstName:      u.Person.FirstName,
		LastName:       u.Person.LastName,
		DisplayName:    u.Person.FullName(),
		DocumentType:   u.Person.DocumentType,
		DocumentNumber: u.Person.DocumentNumber,
		Gender:         u.Person.Gender,
		Address:        u.Person.Address,
		Phone:          u.Person.Phone,
		LastLoginAt:    u.LastLoginAt,
	}
}
