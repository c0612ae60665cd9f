package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetplan/internal/config"
	"budgetplan/internal/models"
)

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff_id": c.GetString("staffID")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := config.Load(); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	staff := &models.Staff{Base: models.Base{ID: "0190d4c8-0000-7000-8000-000000000001"}, Email: "treasurer@test.com"}

	t.Run("valid token sets staff id", func(t *testing.T) {
		token, err := GenerateAccessToken(staff)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		rec := doRequest(setupAuthRouter(), "Authorization", "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := parseBody(t, rec)["staff_id"]; got != staff.ID {
			t.Errorf("expected staff id %s, got %v", staff.ID, got)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(setupAuthRouter(), "Authorization", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseBody(t, rec), "UNAUTHORIZED")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := doRequest(setupAuthRouter(), "Authorization", "Token abc")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("signed with another key", func(t *testing.T) {
		claims := &JWTClaims{
			StaffID: staff.ID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    tokenIssuer,
			},
		}
		forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))

		rec := doRequest(setupAuthRouter(), "Authorization", "Bearer "+forged)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := &JWTClaims{
			StaffID: staff.ID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Issuer:    tokenIssuer,
			},
		}
		expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))

		rec := doRequest(setupAuthRouter(), "Authorization", "Bearer "+expired)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(time.Minute))
	r.GET("/test", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"has_deadline": ok})
	})

	rec := doRequest(r, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseBody(t, rec)["has_deadline"] != true {
		t.Error("expected request context to carry a deadline")
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey)})
	})

	rec := doRequest(r, "", "")
	id := rec.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if parseBody(t, rec)["request_id"] != id {
		t.Error("expected context request id to match header")
	}
}

func TestRequestLoggingKeepsIncomingID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	incoming := "0190d4c8-1234-7000-8000-00000000beef"
	if got := doRequest(r, "X-Request-ID", incoming).Header().Get("X-Request-ID"); got != incoming {
		t.Errorf("expected incoming id %s to be kept, got %s", incoming, got)
	}

	if got := doRequest(r, "X-Request-ID", "not-a-uuid").Header().Get("X-Request-ID"); got == "not-a-uuid" || got == "" {
		t.Errorf("expected a generated id for a malformed header, got %q", got)
	}
}
