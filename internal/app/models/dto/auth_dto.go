package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/app/models"
)

// EligibilityRequest asks whether an email is pre-registered for a role
type EligibilityRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=student professor"`
}

// RequiredName is the name on file that a registrant has to match
type RequiredName struct {
	FirstName string `json:"firstName" example:"Jane"`
	LastName  string `json:"lastName" example:"Doe"`
}

// EligibilityResponse is the result of an eligibility check
type EligibilityResponse struct {
	Eligible     bool          `json:"eligible" example:"true"`
	Message      string        `json:"message" example:"You are eligible to register as a student"`
	RequiredName *RequiredName `json:"requiredName,omitempty"`
}

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"required,oneof=student professor admin"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
}

// RegisteredUser is the identity created by a registration
type RegisteredUser struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email" example:"jane.doe@uni.edu"`
	Role  models.Role `json:"role" example:"student"`
}

// RegisterResponse is returned by a successful registration
type RegisterResponse struct {
	User RegisteredUser `json:"user"`
}

// StudentRegisterRequest is a student self-registration including the academic record
type StudentRegisterRequest struct {
	FirstName  string `json:"firstName" binding:"required,max=100"`
	LastName   string `json:"lastName" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Phone      string `json:"phone" binding:"omitempty,max=30"`
	Department string `json:"department" binding:"required" example:"CSE"`
	Batch      string `json:"batch" binding:"required" example:"24"`
	Semester   int    `json:"semester" binding:"omitempty,min=1,max=12" example:"1"`
}

// StudentRegisterResponse carries the created student record ids
type StudentRegisterResponse struct {
	ID        uuid.UUID `json:"id"`
	StudentID string    `json:"studentId" example:"CSE24007"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64           `json:"expiresIn" example:"3600"`
	User        *models.Profile `json:"user"`
}
