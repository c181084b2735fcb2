package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"aiContentStudio/internal/apperr"
)

// ParseFromMD extracts a Bearer token from gRPC metadata.
func ParseFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", apperr.Unauthenticated("missing metadata")
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return "", apperr.Unauthenticated("missing authorization")
	}
	return BearerToken(vals[0])
}

// NewUnaryAuthInterceptor returns a gRPC unary interceptor that authenticates
// the Bearer token in incoming metadata and injects the live Principal into
// the context. Methods listed in allowUnauthenticated bypass authentication
// (e.g., health checks).
func NewUnaryAuthInterceptor(a *Authenticator, allowUnauthenticated ...string) grpc.UnaryServerInterceptor {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, m := range allowUnauthenticated {
		allow[strings.TrimSpace(m)] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := allow[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		tok, err := ParseFromMD(ctx)
		if err == nil {
			var p *Principal
			if p, err = a.Authenticate(ctx, tok); err == nil {
				return handler(WithPrincipal(ctx, p), req)
			}
		}
		return nil, status.Error(apperr.GRPCCode(err), "auth error: "+apperr.PublicMessage(err))
	}
}
