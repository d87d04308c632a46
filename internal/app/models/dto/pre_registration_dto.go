package dto

// CreatePreRegistrationRequest pre-approves a person for self-registration
type CreatePreRegistrationRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
	Role      string `json:"role" binding:"required,oneof=student professor"`
}

// PreRegistrationFilter narrows the pre-registration listing
type PreRegistrationFilter struct {
	Role       string `form:"role" binding:"omitempty,oneof=student professor"`
	Registered *bool  `form:"registered"`
}
