package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/logger"
	"budgetplan/internal/models"
	"budgetplan/internal/services"
	"budgetplan/internal/validator"
)

// --- mock services ---

type mockStaffService struct {
	createStaffFn     func(email, password, firstName, lastName, position string) (*models.Staff, error)
	getStaffByEmailFn func(email string) (*models.Staff, error)
	getStaffByIDFn    func(id string) (*models.Staff, error)
	attemptLoginFn    func(email, password string) (*models.Staff, error)
}

func (m *mockStaffService) CreateStaff(email, password, firstName, lastName, position string) (*models.Staff, error) {
	if m.createStaffFn != nil {
		return m.createStaffFn(email, password, firstName, lastName, position)
	}
	return &models.Staff{}, nil
}

func (m *mockStaffService) GetStaffByEmail(email string) (*models.Staff, error) {
	if m.getStaffByEmailFn != nil {
		return m.getStaffByEmailFn(email)
	}
	return &models.Staff{}, nil
}

func (m *mockStaffService) GetStaffByID(id string) (*models.Staff, error) {
	if m.getStaffByIDFn != nil {
		return m.getStaffByIDFn(id)
	}
	return &models.Staff{}, nil
}

func (m *mockStaffService) AttemptLogin(email, password string) (*models.Staff, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.Staff{}, nil
}

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(entry services.AuditEntry) {
	m.actions = append(m.actions, string(entry.Action))
}

// --- test helpers ---

const testStaffID = "0190d4c8-0000-7000-8000-0000000000aa"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/profile", injectStaffID(testStaffID), handler.GetProfile)
	return r
}

func injectStaffID(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("staffID", id)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		staffSvc := &mockStaffService{
			createStaffFn: func(email, _, firstName, lastName, position string) (*models.Staff, error) {
				return &models.Staff{
					Base:      models.Base{ID: testStaffID},
					Email:     email,
					FirstName: firstName,
					LastName:  lastName,
					Position:  position,
				}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewAuthHandler(staffSvc, audit)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/register",
			`{"email":"treasurer@example.com","password":"password123","first_name":"Ana","last_name":"Cruz","position":"Treasurer"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] == nil || result["token"] == "" {
			t.Error("expected non-empty token")
		}
		staff := result["staff"].(map[string]interface{})
		if staff["email"] != "treasurer@example.com" {
			t.Errorf("expected email treasurer@example.com, got %v", staff["email"])
		}
		if staff["position"] != "Treasurer" {
			t.Errorf("expected position Treasurer, got %v", staff["position"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "REGISTER" {
			t.Errorf("expected REGISTER audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on missing email", func(t *testing.T) {
		handler := NewAuthHandler(&mockStaffService{}, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/register", `{"password":"password123"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		handler := NewAuthHandler(&mockStaffService{}, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/register", `{"email":"test@example.com","password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		staffSvc := &mockStaffService{
			createStaffFn: func(_, _, _, _, _ string) (*models.Staff, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		handler := NewAuthHandler(staffSvc, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/register", `{"email":"dup@example.com","password":"password123"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token", func(t *testing.T) {
		staffSvc := &mockStaffService{
			attemptLoginFn: func(email, _ string) (*models.Staff, error) {
				return &models.Staff{Base: models.Base{ID: testStaffID}, Email: email}, nil
			},
		}
		handler := NewAuthHandler(staffSvc, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login", `{"email":"treasurer@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["token"] == "" {
			t.Error("expected token")
		}
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		staffSvc := &mockStaffService{
			attemptLoginFn: func(_, _ string) (*models.Staff, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(staffSvc, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login", `{"email":"treasurer@example.com","password":"wrong-password"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns the authenticated staff member", func(t *testing.T) {
		staffSvc := &mockStaffService{
			getStaffByIDFn: func(id string) (*models.Staff, error) {
				return &models.Staff{Base: models.Base{ID: id}, Email: "treasurer@example.com"}, nil
			},
		}
		handler := NewAuthHandler(staffSvc, &mockAuditService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		staff := parseJSON(t, rec)["staff"].(map[string]interface{})
		if staff["id"] != testStaffID {
			t.Errorf("expected id %s, got %v", testStaffID, staff["id"])
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewAuthHandler(&mockStaffService{}, &mockAuditService{})
		r := gin.New()
		r.GET("/profile", handler.GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
