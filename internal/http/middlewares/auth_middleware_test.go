package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beadworks/storeadmin/internal/auth"
	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(manager *auth.Manager, roles ...string) *gin.Engine {
	m := middlewares.NewAuthMiddleware(manager)

	r := gin.New()
	grp := r.Group("/", m.RequireAuth())
	if len(roles) > 0 {
		grp.Use(m.RequireRoles(roles...))
	}
	grp.GET("/secret", func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	return r
}

func request(r *gin.Engine, token string, viaCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	if token != "" {
		if viaCookie {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAcceptsBearerAndCookie(t *testing.T) {
	manager := auth.NewManager("a-secret", "r-secret", time.Minute, time.Hour)
	raw, _, err := manager.IssueAccess(7, "admin@example.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := newProtectedRouter(manager)

	if w := request(r, raw, false); w.Code != http.StatusOK {
		t.Fatalf("bearer status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := request(r, raw, true); w.Code != http.StatusOK {
		t.Fatalf("cookie status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestBearerHeaderToleratesExtraSpaces(t *testing.T) {
	manager := auth.NewManager("a-secret", "r-secret", time.Minute, time.Hour)
	raw, _, err := manager.IssueAccess(7, "admin@example.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := newProtectedRouter(manager)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer   "+raw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejections(t *testing.T) {
	manager := auth.NewManager("a-secret", "r-secret", time.Minute, time.Hour)
	r := newProtectedRouter(manager)

	if w := request(r, "", false); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", w.Code)
	}
	if w := request(r, "garbage", false); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d", w.Code)
	}

	expired := auth.NewManager("a-secret", "r-secret", -time.Minute, time.Hour)
	raw, _, err := expired.IssueAccess(7, "admin@example.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := request(r, raw, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token status = %d", w.Code)
	}

	// refresh token must not pass the access gate
	refresh, _, err := manager.IssueRefresh(7, "admin@example.com")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if w := request(r, refresh, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh-as-access status = %d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	manager := auth.NewManager("a-secret", "r-secret", time.Minute, time.Hour)

	adminToken, _, err := manager.IssueAccess(1, "admin@example.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subToken, _, err := manager.IssueAccess(2, "sub@example.com", user.RoleSubAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userToken, _, err := manager.IssueAccess(3, "user@example.com", user.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	staffOnly := newProtectedRouter(manager, user.RoleAdmin, user.RoleSubAdmin)

	if w := request(staffOnly, adminToken, false); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d", w.Code)
	}
	if w := request(staffOnly, subToken, false); w.Code != http.StatusOK {
		t.Fatalf("subadmin status = %d", w.Code)
	}
	if w := request(staffOnly, userToken, false); w.Code != http.StatusForbidden {
		t.Fatalf("user status = %d, want forbidden", w.Code)
	}

	adminOnly := newProtectedRouter(manager, user.RoleAdmin)
	if w := request(adminOnly, subToken, false); w.Code != http.StatusForbidden {
		t.Fatalf("subadmin on admin-only status = %d", w.Code)
	}
}
