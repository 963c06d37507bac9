package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Role           identity.Role       `gorm:"type:varchar(30);not null;default:'customer'"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVO'"`
	DocumentType   string              `gorm:"type:varchar(20)"`
	DocumentNumber string              `gorm:"type:varchar(30)"`
	Gender         string              `gorm:"type:varchar(20)"`
	FirstName      string              `gorm:"type:varchar(100);not null"`
	LastName       string              `gorm:"type:varchar(100)"`
	Address        string              `gorm:"type:varchar(255)"`
	Phone          string              `gorm:"type:varchar(50)"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Status:            m.Status,
		Person: identity.Person{
			DocumentType:   m.DocumentType,
			DocumentNumber: m.DocumentNumber,
			Gender:         m.Gender,
			FirstName:      m.FirstName,
			LastName:       m.LastName,
			Address:        m.Address,
			Phone:          m.Phone,
		},
		LastLoginAt: m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Status = u.Status
	m.DocumentType = u.Person.DocumentType
	m.DocumentNumber = u.Person.DocumentNumber
	m.Gender = u.Person.Gender
	m.FirstName = u.Person.FirstName
	m.LastName = u.Person.LastName
	m.Address = u.Person.Address
	m.Phone = u.Person.Phone
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
