package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimSubject = "sub"
	jwtClaimEmail   = "email"
	jwtClaimRole    = "role"
)

var errNoClaims = errors.New("user claims not found in context or invalid type")

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errNoClaims
	}
	return claims, nil
}

func GetUserRoleFromContext(ctx context.Context) (string, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	role, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}
	return role, nil
}

// GetActorFromContext names who performed an admin action: the email claim
// when present, otherwise the subject.
func GetActorFromContext(ctx context.Context) (string, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	for _, key := range []string{jwtClaimEmail, jwtClaimSubject} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("token carries neither '%s' nor '%s'", jwtClaimEmail, jwtClaimSubject)
}
