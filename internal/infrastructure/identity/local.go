package identity

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/results"
	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
)

// LocalProvider is a per-shell authentication state machine over the
// shared account directory. Each shell owns one provider instance, so a
// sign-in on one shell never leaks into another.
type LocalProvider struct {
	directory *Directory
	logger    *logging.ChanneledLogger

	mu          sync.Mutex
	current     *user.AuthUser
	subscribers map[int]func(*user.AuthUser)
	nextSubID   int
}

// NewLocalProvider creates a signed-out provider bound to the directory.
func NewLocalProvider(directory *Directory, logger *logging.ChanneledLogger) *LocalProvider {
	return &LocalProvider{
		directory:   directory,
		logger:      logger,
		subscribers: make(map[int]func(*user.AuthUser)),
	}
}

// Current returns the signed-in user, or nil while signed out.
func (p *LocalProvider) Current() *user.AuthUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnChange registers a state-transition listener. The returned closure
// unsubscribes it.
func (p *LocalProvider) OnChange(callback func(*user.AuthUser)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = callback
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// Register creates an account and signs the shell in as it.
func (p *LocalProvider) Register(ctx context.Context, email, password, displayName string) results.Result[*user.AuthUser] {
	account, err := p.directory.Register(ctx, email, password, displayName)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			return results.Failure[*user.AuthUser]("an account already exists for this email", results.CodeValidationError)
		}
		if errors.Is(err, ErrWeakPassword) {
			return results.Failure[*user.AuthUser]("password must be at least 8 characters", results.CodeValidationError)
		}
		p.logger.Auth().Error("Registration failed", "error", err.Error())
		return results.Failure[*user.AuthUser](err.Error(), results.CodeInvalidUser)
	}

	authUser := accountToAuthUser(account)
	p.transition(authUser)
	return results.Success(authUser)
}

// SignIn authenticates against the directory and transitions to signed-in.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) results.Result[*user.AuthUser] {
	account, err := p.directory.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return results.Failure[*user.AuthUser]("invalid email or password", results.CodeInvalidUser)
		}
		p.logger.Auth().Error("Sign-in failed", "error", err.Error())
		return results.Failure[*user.AuthUser]("sign-in failed", results.CodeUnknownError)
	}

	authUser := accountToAuthUser(account)
	p.logger.Auth().Info("User signed in", "uid", p.logger.SanitizeUID(authUser.UID))
	p.transition(authUser)
	return results.Success(authUser)
}

// SignOut transitions to signed-out. Signing out while signed out succeeds.
func (p *LocalProvider) SignOut(ctx context.Context) results.Result[bool] {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.mu.Unlock()

	if wasSignedIn {
		p.logger.Auth().Info("User signed out")
	}
	p.transition(nil)
	return results.Success(wasSignedIn)
}

// Adopt transitions directly to an already-verified user. Used when a
// shell presents a valid session token and its auth state is being
// re-established without a credential exchange.
func (p *LocalProvider) Adopt(authUser *user.AuthUser) {
	p.transition(authUser)
}

// transition commits the new state and notifies subscribers outside the
// lock, in subscription order. A panicking callback is isolated so it
// cannot starve the rest.
func (p *LocalProvider) transition(next *user.AuthUser) {
	p.mu.Lock()
	p.current = next
	ids := make([]int, 0, len(p.subscribers))
	for id := range p.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	callbacks := make([]func(*user.AuthUser), 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, p.subscribers[id])
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		p.invoke(cb, next)
	}
}

func (p *LocalProvider) invoke(cb func(*user.AuthUser), state *user.AuthUser) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Auth().Error("Auth state listener panicked", "panic", r)
		}
	}()
	cb(state)
}

func accountToAuthUser(account *Account) *user.AuthUser {
	return &user.AuthUser{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	}
}
