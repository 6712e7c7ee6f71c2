// Package identity provides the authentication provider abstraction and
// a local, store-backed implementation of it. The rest of the
// application only ever sees the Provider interface, so a hosted
// identity backend can be swapped in without touching the services.
package identity

import (
	"context"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
)

// Provider is the authentication surface a shell observes. Current is
// nil while signed out. OnChange registers a listener invoked with the
// new state on every transition; the returned closure unsubscribes.
type Provider interface {
	Current() *user.AuthUser
	OnChange(callback func(*user.AuthUser)) func()
	Register(ctx context.Context, email, password, displayName string) results.Result[*user.AuthUser]
	SignIn(ctx context.Context, email, password string) results.Result[*user.AuthUser]
	SignOut(ctx context.Context) results.Result[bool]
}
