package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waterlog/internal/models"
)

const testSecret = "test-secret"

func testToken(t *testing.T, role models.UserRole, ttl time.Duration) string {
	t.Helper()
	token, err := IssueToken(testSecret, &models.User{ID: 7, Username: "admin", Role: role}, ttl, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestParseTokenRoundTrip(t *testing.T) {
	claims, err := ParseToken(testSecret, testToken(t, models.RoleAdmin, time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "admin" || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	if _, err := ParseToken(testSecret, testToken(t, models.RoleAdmin, -time.Minute)); err == nil {
		t.Fatal("expected expired token to fail")
	}
	if _, err := ParseToken("other-secret", testToken(t, models.RoleAdmin, time.Hour)); err == nil {
		t.Fatal("expected token signed with another secret to fail")
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserFromContext(r)
		if !ok || claims.UserID != 7 {
			t.Errorf("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + testToken(t, models.RoleDriver, time.Hour), http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/routes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusUnauthorized {
				var body map[string]string
				json.NewDecoder(rec.Body).Decode(&body)
				if body["detail"] != CredentialsError {
					t.Fatalf("unexpected detail %q", body["detail"])
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RoleAdmin, models.RoleSupervisor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[models.UserRole]int{
		models.RoleAdmin:      http.StatusNoContent,
		models.RoleSupervisor: http.StatusNoContent,
		models.RoleDriver:     http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithUser(req.Context(), UserClaims{UserID: 1, Username: "x", Role: role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: expected %d, got %d", role, want, rec.Code)
		}
	}
}
