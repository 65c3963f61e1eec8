package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"automarket/internal/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte("test-secret")

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/x", handlers...)
	return r
}

func do(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(Authenticate(secret))

	t.Run("missing header", func(t *testing.T) {
		if w := do(r, "", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueToken(secret, entities.Actor{ID: "pro-1", Role: entities.RolePro}, time.Hour)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		w := do(r, "Authorization", "Bearer "+token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if body := w.Body.String(); body != `{"id":"pro-1","role":"pro"}` {
			t.Fatalf("unexpected body: %s", body)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := IssueToken([]byte("other"), entities.Actor{ID: "pro-1", Role: entities.RolePro}, time.Hour)
		if w := do(r, "Authorization", "Bearer "+token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, _ := IssueToken(secret, entities.Actor{ID: "pro-1", Role: entities.RolePro}, -time.Minute)
		if w := do(r, "Authorization", "Bearer "+token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role:             "admin",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
		}).SignedString(secret)
		if w := do(r, "Authorization", "Bearer "+token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(Authenticate(secret), RequireRole(entities.RoleStaff))

	pro, _ := IssueToken(secret, entities.Actor{ID: "pro-1", Role: entities.RolePro}, time.Hour)
	if w := do(r, "Authorization", "Bearer "+pro); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	staff, _ := IssueToken(secret, entities.Actor{ID: "ops", Role: entities.RoleStaff}, time.Hour)
	if w := do(r, "Authorization", "Bearer "+staff); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	if w := do(newRouter(RequireToken("X-Sweep-Token", "")), "X-Sweep-Token", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("empty configured token must disable the endpoint, got %d", w.Code)
	}
	r := newRouter(RequireToken("X-Sweep-Token", "s3cret"))
	for _, wrong := range []string{"nope", "s3cre", "s3cret ", "S3CRET", ""} {
		if w := do(r, "X-Sweep-Token", wrong); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", wrong, w.Code)
		}
	}
	if w := do(r, "X-Sweep-Token", "s3cret"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
