package dto

import "github.com/yigit/uniportal/internal/app/models"

// AdminCreateStudentRequest creates a student record before the student has an account
type AdminCreateStudentRequest struct {
	FirstName    string `json:"firstName" binding:"required,max=100"`
	LastName     string `json:"lastName" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"omitempty,max=30"`
	Department   string `json:"department" binding:"required" example:"CSE"`
	Batch        string `json:"batch" binding:"required" example:"24"`
	Semester     int    `json:"semester" binding:"omitempty,min=1,max=12" example:"1"`
	AcademicYear string `json:"academicYear" binding:"omitempty,max=9" example:"2024-2025"`
}

// AdminCreateStudentResponse is the result of an admin-created student
type AdminCreateStudentResponse struct {
	StudentID       string                  `json:"studentId" example:"CSE24007"`
	Student         *models.Student         `json:"student"`
	PreRegistration *models.PreRegistration `json:"preRegistration"`
}
