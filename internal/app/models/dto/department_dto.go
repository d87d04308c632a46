package dto

// CreateDepartmentRequest represents department creation data
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=150"`
	Code        string `json:"code" binding:"required,max=10"`
	Description string `json:"description"`
}

// UpdateDepartmentRequest represents department update data
type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=150"`
	Code        string `json:"code" binding:"required,max=10"`
	Description string `json:"description"`
}
