package httpx

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mbolis/quick-inspect/model"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

var validate = validator.New()

// ValidateCredentials is the format check run before credentials leave the device:
// a well formed email address and a non-empty password.
func ValidateCredentials(creds model.Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticator registers and logs users in against the inspection service and
// remembers who is logged in for the lifetime of the process.
type Authenticator struct {
	client *Client

	mu    sync.RWMutex
	email string
}

func NewAuthenticator(client *Client) *Authenticator {
	return &Authenticator{client: client}
}

func (a *Authenticator) Register(ctx context.Context, creds model.Credentials) error {
	if err := ValidateCredentials(creds); err != nil {
		return err
	}
	return a.client.Post(ctx, RegisterPath, creds, nil)
}

func (a *Authenticator) Login(ctx context.Context, creds model.Credentials) error {
	if err := ValidateCredentials(creds); err != nil {
		return err
	}
	if err := a.client.Post(ctx, LoginPath, creds, nil); err != nil {
		return err
	}

	a.mu.Lock()
	a.email = creds.Email
	a.mu.Unlock()
	return nil
}

func (a *Authenticator) Logout() {
	a.mu.Lock()
	a.email = ""
	a.mu.Unlock()
}

// Session returns the email of the logged in user, if any.
func (a *Authenticator) Session() (email string, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.email, a.email != ""
}
