package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"aiContentStudio/internal/bootstrap"
	"aiContentStudio/internal/db"
	"aiContentStudio/models"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// OpenTestStore opens a memory-only store with the schema and default
// templates in place. It is closed via t.Cleanup.
func OpenTestStore(t *testing.T) *db.Store {
	t.Helper()
	s, err := db.Open("")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := bootstrap.Run(context.Background(), s); err != nil {
		t.Fatalf("bootstrap test store: %v", err)
	}
	return s
}

// CreateUser inserts a user directly, bypassing registration rules. The
// password hash is a placeholder that never verifies.
func CreateUser(t *testing.T, s *db.Store, email, role string, credits int64) *models.User {
	t.Helper()
	ctx := context.Background()
	res, err := s.Prepare(`INSERT INTO users (email, password, name, credits, role) VALUES (?, 'x', ?, ?, ?)`).
		Run(ctx, email, "User "+email, credits, role)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &models.User{ID: res.LastInsertID, Email: email, Name: "User " + email, Credits: credits, Role: role}
}

// Credits reads the live balance of a user.
func Credits(t *testing.T, s *db.Store, userID int64) int64 {
	t.Helper()
	row, err := s.Prepare(`SELECT credits FROM users WHERE id = ?`).Get(context.Background(), userID)
	if err != nil || row == nil {
		t.Fatalf("read credits of %d: %v", userID, err)
	}
	return row.Int64("credits")
}

// GenerationCount returns how many generations a user owns.
func GenerationCount(t *testing.T, s *db.Store, userID int64) int64 {
	t.Helper()
	row, err := s.Prepare(`SELECT COUNT(*) AS n FROM generations WHERE user_id = ?`).Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("count generations of %d: %v", userID, err)
	}
	return row.Int64("n")
}

// GenerateJWTHS256 returns a signed JWT with a sub claim for userID that
// expires after ttl. A negative ttl yields an already expired token.
func GenerateJWTHS256(t *testing.T, secret string, userID int64, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}

// OutgoingBearer attaches the token to outgoing gRPC metadata for client calls.
func OutgoingBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
