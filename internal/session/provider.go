// Package session tracks who is signed in to this process. The current
// identity is the owner of every todo read or written.
package session

import (
	"sync"
)

// Identity is the signed-in user.
type Identity struct {
	UserID     string `json:"id"`
	CognitoSub string `json:"cognito_sub,omitempty"`
	Email      string `json:"email,omitempty"`

	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

// State is a point-in-time view of the provider.
type State struct {
	Identity *Identity `json:"user"`
	Loading  bool      `json:"loading"`
}

// Provider holds the current identity. It is safe for concurrent use.
type Provider struct {
	mu        sync.RWMutex
	identity  *Identity
	loading   bool
	listeners []func(prev, next *Identity)
}

func NewProvider() *Provider {
	return &Provider{}
}

// Current returns the signed-in identity, if any.
func (p *Provider) Current() (Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return Identity{}, false
	}
	return *p.identity, true
}

func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := State{Loading: p.loading}
	if p.identity != nil {
		id := *p.identity
		s.Identity = &id
	}
	return s
}

// BeginLoading marks a sign-in as in progress. The returned function clears
// the flag.
func (p *Provider) BeginLoading() (done func()) {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}
}

// SignIn replaces the current identity.
func (p *Provider) SignIn(id Identity) {
	p.swap(&id)
}

// SignOut clears the current identity.
func (p *Provider) SignOut() {
	p.swap(nil)
}

// UpdateTokens replaces the tokens of the current identity without
// announcing an identity change.
func (p *Provider) UpdateTokens(accessToken, refreshToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity == nil {
		return
	}
	p.identity.AccessToken = accessToken
	if refreshToken != "" {
		p.identity.RefreshToken = refreshToken
	}
}

// OnChange registers fn to be called after the signed-in user changes.
// fn is not called when the same user signs in again.
func (p *Provider) OnChange(fn func(prev, next *Identity)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

func (p *Provider) swap(next *Identity) {
	p.mu.Lock()
	prev := p.identity
	p.identity = next
	listeners := append([]func(prev, next *Identity){}, p.listeners...)
	p.mu.Unlock()

	if userID(prev) == userID(next) {
		return
	}
	for _, fn := range listeners {
		fn(prev, next)
	}
}

func userID(id *Identity) string {
	if id == nil {
		return ""
	}
	return id.UserID
}
