package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/controllers"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/memory"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/identity"
	"github.com/yigit/uniportal/internal/middleware"
	"github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

type apiEnv struct {
	router   *gin.Engine
	store    *memory.Store
	accounts *identity.MemoryAccountStore
	jwt      *auth.JWTService
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIEnv(t *testing.T, throttles Throttles) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()

	store := memory.New()
	accounts := identity.NewMemoryAccountStore()
	provider := identity.NewLocalProvider(accounts, bcrypt.MinCost, logger)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "routes-test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "uniportal-test",
	})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ids := services.NewStudentIDGenerator(services.DefaultMaxStudentIDAttempts)

	authService := services.NewAuthService(store, provider, jwtService, time.Second, logger)
	ctrl := Controllers{
		Auth: controllers.NewAuthController(
			services.NewEligibilityService(store, m, time.Second, logger),
			services.NewRegistrationService(store, provider, ids, m, time.Second, logger),
			authService,
			logger,
		),
		Admin: controllers.NewAdminController(
			services.NewAdminStudentService(store, ids, m, time.Second, logger),
			services.NewPreRegistrationService(store, logger),
			authService,
			logger,
		),
		Department: controllers.NewDepartmentController(services.NewDepartmentService(store, logger)),
		Course:     controllers.NewCourseController(services.NewCourseService(store, logger)),
		Health:     controllers.NewHealthController(map[string]controllers.Pinger{"database": store}, logger),
	}

	router := gin.New()
	router.Use(middleware.Metrics(m))
	SetupRouter(router, ctrl, middleware.NewAuthMiddleware(jwtService), throttles, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &apiEnv{router: router, store: store, accounts: accounts, jwt: jwtService}
}

func (e *apiEnv) token(t *testing.T, role models.Role) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(auth.Subject{
		ProfileID: uuid.New(),
		Email:     string(role) + "@uni.edu",
		Role:      string(role),
	})
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (e *apiEnv) preRegister(t *testing.T, email, first, last string, role models.Role) *models.PreRegistration {
	t.Helper()
	pre := &models.PreRegistration{Email: email, FirstName: first, LastName: last, Role: role}
	require.NoError(t, e.store.PreRegistrations().Create(context.Background(), pre))
	return pre
}

func (e *apiEnv) department(t *testing.T, code string) *models.Department {
	t.Helper()
	dept := &models.Department{Name: code + " Department", Code: code}
	require.NoError(t, e.store.Departments().Create(context.Background(), dept))
	return dept
}

func TestStudentRegistrationFlow(t *testing.T) {
	env := newAPIEnv(t, Throttles{})
	env.preRegister(t, "jane.doe@uni.edu", "Jane", "Doe", models.RoleStudent)
	env.department(t, "CSE")

	w, body := env.do(t, http.MethodPost, "/api/v1/auth/eligibility", "", gin.H{"email": "Jane.Doe@uni.edu", "role": "student"})
	require.Equal(t, http.StatusOK, w.Code)
	var eligibility struct {
		Eligible     bool `json:"eligible"`
		RequiredName struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"requiredName"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &eligibility))
	assert.True(t, eligibility.Eligible)
	assert.Equal(t, "Jane", eligibility.RequiredName.FirstName)

	w, body = env.do(t, http.MethodPost, "/api/v1/auth/register/student", "", gin.H{
		"firstName":  "jane",
		"lastName":   "DOE",
		"email":      "jane.doe@uni.edu",
		"password":   "secret123",
		"department": "cse",
		"batch":      "24",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		ID        uuid.UUID `json:"id"`
		StudentID string    `json:"studentId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &registered))
	assert.Regexp(t, `^CSE24\d{3}$`, registered.StudentID)

	w, body = env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "jane.doe@uni.edu", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &session))
	assert.Equal(t, "Bearer", session.TokenType)

	w, body = env.do(t, http.MethodGet, "/api/v1/auth/me", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.Profile
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.Equal(t, registered.ID, me.ID)
	assert.Equal(t, models.RoleStudent, me.Role)

	// the pre-registration is consumed
	w, body = env.do(t, http.MethodPost, "/api/v1/auth/eligibility", "", gin.H{"email": "jane.doe@uni.edu", "role": "student"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(body.Data, &eligibility))
	assert.False(t, eligibility.Eligible)

	w, body = env.do(t, http.MethodPost, "/api/v1/auth/register/student", "", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane.doe@uni.edu",
		"password": "secret123", "department": "CSE", "batch": "24",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, body.Error)
}

func TestRegisterRejections(t *testing.T) {
	env := newAPIEnv(t, Throttles{})
	env.preRegister(t, "prof@uni.edu", "Ada", "Lovelace", models.RoleProfessor)

	tests := []struct {
		name   string
		token  string
		body   gin.H
		status int
		code   string
	}{
		{
			name:   "not pre-registered",
			body:   gin.H{"firstName": "Eve", "lastName": "Smith", "email": "eve@uni.edu", "password": "secret123", "role": "student"},
			status: http.StatusForbidden,
			code:   "REG_001",
		},
		{
			name:   "name mismatch",
			body:   gin.H{"firstName": "Ada", "lastName": "Byron", "email": "prof@uni.edu", "password": "secret123", "role": "professor"},
			status: http.StatusForbidden,
			code:   "REG_002",
		},
		{
			name:   "admin role without admin session",
			body:   gin.H{"firstName": "Root", "lastName": "User", "email": "root@uni.edu", "password": "secret123", "role": "admin"},
			status: http.StatusForbidden,
			code:   "REG_001",
		},
		{
			name:   "malformed email",
			body:   gin.H{"firstName": "Ada", "lastName": "Lovelace", "email": "not-an-email", "password": "secret123", "role": "professor"},
			status: http.StatusBadRequest,
			code:   "VAL_001",
		},
		{
			name:   "invalid token",
			token:  "garbage",
			body:   gin.H{"firstName": "Ada", "lastName": "Lovelace", "email": "prof@uni.edu", "password": "secret123", "role": "professor"},
			status: http.StatusUnauthorized,
			code:   "AUTH_005",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := env.do(t, http.MethodPost, "/api/v1/auth/register", tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}

	// nothing was left behind by the rejected attempts
	assert.Equal(t, 0, env.accounts.Count("prof@uni.edu"))
	assert.Equal(t, 0, env.accounts.Count("root@uni.edu"))
}

func TestAdminCanRegisterAdmin(t *testing.T) {
	env := newAPIEnv(t, Throttles{})

	w, body := env.do(t, http.MethodPost, "/api/v1/auth/register", env.token(t, models.RoleAdmin),
		gin.H{"firstName": "Root", "lastName": "User", "email": "root@uni.edu", "password": "secret123", "role": "admin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User struct {
			Role models.Role `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &resp))
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newAPIEnv(t, Throttles{})
	payload := gin.H{"email": "new@uni.edu", "firstName": "New", "lastName": "Person", "role": "student"}

	w, _ := env.do(t, http.MethodPost, "/api/v1/admin/pre-registrations", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/v1/admin/pre-registrations", env.token(t, models.RoleStudent), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := env.token(t, models.RoleAdmin)
	w, body := env.do(t, http.MethodPost, "/api/v1/admin/pre-registrations", admin, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pre models.PreRegistration
	require.NoError(t, json.Unmarshal(body.Data, &pre))

	w, _ = env.do(t, http.MethodPost, "/api/v1/admin/pre-registrations", admin, payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = env.do(t, http.MethodGet, "/api/v1/admin/pre-registrations?role=student&registered=false", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.PreRegistration
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Len(t, list, 1)

	w, _ = env.do(t, http.MethodDelete, "/api/v1/admin/pre-registrations/"+pre.ID.String(), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = env.do(t, http.MethodDelete, "/api/v1/admin/pre-registrations/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCreatesStudentThenStudentRegisters(t *testing.T) {
	env := newAPIEnv(t, Throttles{})
	env.department(t, "EEE")
	admin := env.token(t, models.RoleAdmin)

	w, body := env.do(t, http.MethodPost, "/api/v1/admin/students", admin, gin.H{
		"firstName": "Ali", "lastName": "Veli", "email": "ali@uni.edu", "department": "EEE", "batch": "23",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		StudentID string `json:"studentId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Regexp(t, `^EEE23\d{3}$`, created.StudentID)

	w, _ = env.do(t, http.MethodPost, "/api/v1/admin/students", admin, gin.H{
		"firstName": "Other", "lastName": "Person", "email": "other@uni.edu", "department": "NOPE", "batch": "23",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/v1/auth/register/student", "", gin.H{
		"firstName": "Ali", "lastName": "Veli", "email": "ali@uni.edu",
		"password": "secret123", "department": "EEE", "batch": "23",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		StudentID string `json:"studentId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &registered))
	assert.Equal(t, created.StudentID, registered.StudentID)
}

func TestConfirmIdentity(t *testing.T) {
	env := newAPIEnv(t, Throttles{})
	admin := env.token(t, models.RoleAdmin)

	account, err := identity.NewLocalProvider(env.accounts, bcrypt.MinCost, zerolog.Nop()).
		CreateAccount(context.Background(), "someone@uni.edu", "secret123")
	require.NoError(t, err)

	w, _ := env.do(t, http.MethodPost, "/api/v1/admin/identities/"+account.ID.String()+"/confirm", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	stored, err := env.accounts.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmed)

	w, _ = env.do(t, http.MethodPost, "/api/v1/admin/identities/"+uuid.NewString()+"/confirm", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReferenceDataRoutes(t *testing.T) {
	env := newAPIEnv(t, Throttles{})
	admin := env.token(t, models.RoleAdmin)

	w, _ := env.do(t, http.MethodPost, "/api/v1/departments", "", gin.H{"name": "Physics", "code": "PHYS"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := env.do(t, http.MethodPost, "/api/v1/departments", admin, gin.H{"name": "Physics", "code": "phys"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dept models.Department
	require.NoError(t, json.Unmarshal(body.Data, &dept))
	assert.Equal(t, "PHYS", dept.Code)

	w, _ = env.do(t, http.MethodPost, "/api/v1/departments", admin, gin.H{"name": "Physics Again", "code": "PHYS"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = env.do(t, http.MethodGet, "/api/v1/departments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var departments []models.Department
	require.NoError(t, json.Unmarshal(body.Data, &departments))
	assert.Len(t, departments, 1)

	w, body = env.do(t, http.MethodGet, "/api/v1/departments/phys", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byCode models.Department
	require.NoError(t, json.Unmarshal(body.Data, &byCode))
	assert.Equal(t, dept.ID, byCode.ID)

	w, _ = env.do(t, http.MethodGet, "/api/v1/departments/"+dept.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodGet, "/api/v1/departments/CHEM", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = env.do(t, http.MethodGet, "/api/v1/departments/not-a-code!", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	course := gin.H{
		"courseCode": "PHYS101", "courseName": "Mechanics", "departmentId": dept.ID.String(),
		"credits": 4, "capacity": 80,
	}
	w, _ = env.do(t, http.MethodPost, "/api/v1/courses", env.token(t, models.RoleProfessor), course)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/v1/courses", admin, course)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = env.do(t, http.MethodPost, "/api/v1/courses", admin, course)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = env.do(t, http.MethodGet, "/api/v1/courses?departmentId="+dept.ID.String(), env.token(t, models.RoleStudent), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var courses []models.Course
	require.NoError(t, json.Unmarshal(body.Data, &courses))
	assert.Len(t, courses, 1)

	// courses reference the department
	w, _ = env.do(t, http.MethodDelete, "/api/v1/departments/"+dept.ID.String(), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

type countingLimiter struct {
	counts map[string]int64
	err    error
}

func (l *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	l.counts[scope]++
	return l.counts[scope] <= limit, l.counts[scope], nil
}

func TestEligibilityIsRateLimited(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int64{}}
	policy := middleware.RateLimitPolicy{Name: "eligibility", Limit: 2, Window: time.Minute}
	env := newAPIEnv(t, Throttles{
		Eligibility: middleware.RateLimit(policy, limiter, nil, zerolog.Nop()),
	})

	payload := gin.H{"email": "someone@uni.edu", "role": "student"}
	for i := 0; i < 2; i++ {
		w, _ := env.do(t, http.MethodPost, "/api/v1/auth/eligibility", "", payload)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, body := env.do(t, http.MethodPost, "/api/v1/auth/eligibility", "", payload)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "RATE_001", body.Error.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// login has its own policy
	w, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "someone@uni.edu", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newAPIEnv(t, Throttles{})

	w, _ := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env.store.FailOn(memory.OpPing, errors.New("connection refused"))
	w, body := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var health controllers.HealthResponse
	require.NoError(t, json.Unmarshal(body.Data, &health))
	assert.Equal(t, "unavailable", health.Components["database"])

	w, _ = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uniportal_http_request_duration_seconds")
}
