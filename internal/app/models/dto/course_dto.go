package dto

// CourseRequest is used for both creating and updating a course
type CourseRequest struct {
	CourseCode   string  `json:"courseCode" binding:"required,max=20" example:"CSE101"`
	CourseName   string  `json:"courseName" binding:"required,max=200" example:"Structured Programming"`
	DepartmentID string  `json:"departmentId" binding:"required,uuid"`
	ProfessorID  *string `json:"professorId" binding:"omitempty,uuid"`
	Credits      int     `json:"credits" binding:"required,min=1,max=10" example:"3"`
	Semester     int     `json:"semester" binding:"omitempty,min=1,max=12" example:"1"`
	Capacity     int     `json:"capacity" binding:"required,min=1" example:"60"`
}
