package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/testutil"
	"aiContentStudio/models"
	"aiContentStudio/repository"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *repository.UserRepository, *models.User) {
	t.Helper()
	s := testutil.OpenTestStore(t)
	users := repository.NewUserRepository(s)
	u := testutil.CreateUser(t, s, "alice@example.com", models.RoleUser, 10)
	return NewAuthenticator(NewIssuer(testSecret, 0), users), users, u
}

func TestAuthenticate_ReReadsUserEveryTime(t *testing.T) {
	a, users, u := newTestAuthenticator(t)
	ctx := context.Background()
	tok, _ := a.Issuer().Issue(u.ID)

	p, err := a.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.UserID != u.ID || p.Role != models.RoleUser || p.Credits != 10 {
		t.Fatalf("principal mismatch: %+v", p)
	}

	// Role and balance changes show up on the next request with the same token.
	if _, err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if _, err := users.SetCredits(ctx, u.ID, 3); err != nil {
		t.Fatalf("set credits: %v", err)
	}
	p, err = a.Authenticate(ctx, tok)
	if err != nil || !p.IsAdmin() || p.Credits != 3 {
		t.Fatalf("stale principal: %+v err=%v", p, err)
	}

	if _, err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.Authenticate(ctx, tok); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated for deleted user, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"":              false,
		"Bearer":        false,
		"Bearer ":       false,
		"Basic abc":     false,
		"Bearer abc":    true,
		"bearer abc":    true,
		"Bearer  abc  ": true,
	}
	for header, ok := range cases {
		tok, err := BearerToken(header)
		if ok && (err != nil || tok != "abc") {
			t.Fatalf("%q: tok=%q err=%v", header, tok, err)
		}
		if !ok && !apperr.Is(err, apperr.KindUnauthenticated) {
			t.Fatalf("%q: expected unauthenticated, got %v", header, err)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	if _, err := RequireAdmin(context.Background()); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated without principal, got %v", err)
	}
	ctx := WithPrincipal(context.Background(), &Principal{UserID: 1, Role: models.RoleUser})
	if _, err := RequireAdmin(ctx); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for user role, got %v", err)
	}
	ctx = WithPrincipal(context.Background(), &Principal{UserID: 1, Role: models.RoleAdmin})
	if _, err := RequireAdmin(ctx); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, users, u := newTestAuthenticator(t)
	tok, _ := a.Issuer().Issue(u.ID)

	r := gin.New()
	r.GET("/me", RequireUser(a), func(c *gin.Context) {
		p, _ := FromContext(c.Request.Context())
		c.JSON(http.StatusOK, p)
	})
	r.GET("/admin", RequireUser(a), RequireAdminRole(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := do("/me", ""); got != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", got)
	}
	if got := do("/me", "Bearer garbage"); got != http.StatusUnauthorized {
		t.Fatalf("invalid token: %d", got)
	}
	expired := testutil.GenerateJWTHS256(t, testSecret, u.ID, -time.Minute)
	if got := do("/me", "Bearer "+expired); got != http.StatusUnauthorized {
		t.Fatalf("expired token: %d", got)
	}
	if got := do("/me", "Bearer "+tok); got != http.StatusOK {
		t.Fatalf("valid token: %d", got)
	}
	if got := do("/admin", "Bearer "+tok); got != http.StatusForbidden {
		t.Fatalf("non-admin on admin route: %d", got)
	}
	_, _ = users.SetRole(context.Background(), u.ID, models.RoleAdmin)
	if got := do("/admin", "Bearer "+tok); got != http.StatusNoContent {
		t.Fatalf("promoted admin: %d", got)
	}
}

func TestUnaryAuthInterceptor(t *testing.T) {
	a, _, u := newTestAuthenticator(t)
	// allowlisted method should bypass auth
	interceptor := NewUnaryAuthInterceptor(a, "/health")

	// 1) Allowlisted path: no header -> handler executes, no principal
	hCalled := false
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/health"}, func(ctx context.Context, req any) (any, error) {
		hCalled = true
		if _, ok := FromContext(ctx); ok {
			t.Fatalf("expected no principal on allowlisted path")
		}
		return 123, nil
	})
	if err != nil || !hCalled {
		t.Fatalf("allowlisted handler err=%v called=%v", err, hCalled)
	}

	// 2) Missing token -> Unauthenticated
	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	// 3) Authenticated path: with token -> live principal injected
	tok, _ := a.Issuer().Issue(u.ID)
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		p, ok := FromContext(ctx)
		if !ok || p.UserID != u.ID || p.Email != "alice@example.com" {
			t.Fatalf("principal not injected: %+v ok=%v", p, ok)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor auth path: %v", err)
	}
}
