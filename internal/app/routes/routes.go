package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniportal/internal/app/controllers"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth       *controllers.AuthController
	Admin      *controllers.AdminController
	Department *controllers.DepartmentController
	Course     *controllers.CourseController
	Health     *controllers.HealthController
}

// Throttles are the rate-limit handlers of the public auth endpoints. A nil entry disables throttling.
type Throttles struct {
	Eligibility  gin.HandlerFunc
	Registration gin.HandlerFunc
	Login        gin.HandlerFunc
}

func orPass(h gin.HandlerFunc) gin.HandlerFunc {
	if h == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return h
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	throttles Throttles,
	metricsHandler http.Handler,
) {
	router.GET("/health", ctrl.Health.Health)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/eligibility", orPass(throttles.Eligibility), ctrl.Auth.CheckEligibility)
		// Anonymous callers register students and professors; admin accounts need an admin token
		auth.POST("/register", orPass(throttles.Registration), authMiddleware.OptionalAuth(), ctrl.Auth.Register)
		auth.POST("/register/student", orPass(throttles.Registration), ctrl.Auth.RegisterStudent)
		auth.POST("/login", orPass(throttles.Login), ctrl.Auth.Login)
		auth.GET("/me", authMiddleware.JWTAuth(), ctrl.Auth.Me)
	}

	// Department routes (public reads)
	departments := v1.Group("/departments")
	{
		departments.GET("", ctrl.Department.GetAllDepartments)
		departments.GET("/:id", ctrl.Department.GetDepartment)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	courses := authenticated.Group("/courses")
	{
		courses.GET("", ctrl.Course.ListCourses)
		courses.GET("/:id", ctrl.Course.GetCourse)
	}

	// --- Admin routes ---
	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	departmentsAdmin := authenticated.Group("/departments")
	departmentsAdmin.Use(adminOnly)
	{
		departmentsAdmin.POST("", ctrl.Department.CreateDepartment)
		departmentsAdmin.PUT("/:id", ctrl.Department.UpdateDepartment)
		departmentsAdmin.DELETE("/:id", ctrl.Department.DeleteDepartment)
	}

	coursesAdmin := authenticated.Group("/courses")
	coursesAdmin.Use(adminOnly)
	{
		coursesAdmin.POST("", ctrl.Course.CreateCourse)
		coursesAdmin.PUT("/:id", ctrl.Course.UpdateCourse)
		coursesAdmin.DELETE("/:id", ctrl.Course.DeleteCourse)
	}

	admin := authenticated.Group("/admin")
	admin.Use(adminOnly)
	{
		admin.POST("/students", ctrl.Admin.CreateStudent)
		admin.GET("/pre-registrations", ctrl.Admin.ListPreRegistrations)
		admin.POST("/pre-registrations", ctrl.Admin.CreatePreRegistration)
		admin.DELETE("/pre-registrations/:id", ctrl.Admin.DeletePreRegistration)
		admin.POST("/identities/:id/confirm", ctrl.Admin.ConfirmIdentity)
	}
}
