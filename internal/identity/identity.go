// Package identity carries the requesting user through a context.
package identity

import "context"

// User is the person a request acts for.
type User struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// Local is the user assumed when no identity source is configured.
var Local = User{ID: 1, Login: "local", DisplayName: "Local User"}

type ctxKey struct{}

// With returns a context carrying u.
func With(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// From returns the user stored in ctx.
func From(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// FromOr returns the user stored in ctx, or fallback.
func FromOr(ctx context.Context, fallback User) User {
	if u, ok := From(ctx); ok {
		return u
	}
	return fallback
}
