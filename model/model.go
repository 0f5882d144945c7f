package model

import (
	"context"
	"os"

	"chatwave/auth"
	"chatwave/chat"
	"chatwave/config"
	"chatwave/delivery"
	"chatwave/gateway"
	"chatwave/provider"
	"chatwave/storage"
)

// Backend is the part of the gateway client the model layer calls
type Backend interface {
	SessionCreator
	delivery.SessionMessenger
	ListSessions(ctx context.Context, userID string) ([]gateway.Session, error)
	FetchMessages(ctx context.Context, sessionID string) ([]chat.RemoteMessage, error)
	DeleteSession(ctx context.Context, sessionID string) error
	LoginWithGoogle(ctx context.Context, profile gateway.GoogleProfile) (gateway.Login, error)
	SetAccessToken(token string)
}

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config       *config.Config
	Store        *chat.Store
	Orchestrator *Orchestrator
	Backend      Backend // nil when offline
	State        *storage.State
	Provider     provider.Provider // nil unless a model provider answers
	DeviceFlow   *auth.DeviceFlow

	// Application data
	User     *gateway.User
	Sessions []gateway.Session

	// Runtime state (not UI)
	Quitting bool

	// Application metadata
	Version string
	License string
}

// Options collects what NewModel wires together
type Options struct {
	Config   *config.Config
	Store    *chat.Store
	Source   delivery.Source
	Backend  Backend
	State    *storage.State
	Provider provider.Provider
	Version  string
	License  string
}

// NewModel creates a new Model. With a backend, the orchestrator creates
// sessions on first send and the persisted user (if any) is restored.
func NewModel(opts Options) *Model {
	store := opts.Store
	if store == nil {
		store = chat.NewStore()
	}

	jitter := delivery.DefaultJitter()
	if cfg := opts.Config; cfg != nil && cfg.MaxDelay > 0 {
		jitter = delivery.Jitter{Min: cfg.MinDelay, Max: cfg.MaxDelay}
	}

	orch := NewOrchestrator(store, opts.Source, jitter)
	if opts.Backend != nil {
		var recorder SessionRecorder
		if opts.State != nil {
			recorder = opts.State
		}
		orch.WithGateway(opts.Backend, recorder)
	}

	m := &Model{
		Config:       opts.Config,
		Store:        store,
		Orchestrator: orch,
		Backend:      opts.Backend,
		State:        opts.State,
		Provider:     opts.Provider,
		Version:      opts.Version,
		License:      opts.License,
	}

	if opts.Config != nil && opts.Backend != nil {
		m.DeviceFlow = auth.NewDeviceFlow(opts.Config.GoogleClientID, opts.Config.GoogleClientSecret)
	}

	m.restoreLogin()
	m.restoreModel()
	if m.Offline() && m.User == nil {
		m.SetUser(localUser())
	}

	store.EnsureChat()
	return m
}

// Offline reports whether turns run without the backend
func (m *Model) Offline() bool {
	return m.Backend == nil
}

// LoggedIn reports whether a user is known
func (m *Model) LoggedIn() bool {
	return m.User != nil
}

// NeedsLogin reports whether the login screen must be shown
func (m *Model) NeedsLogin() bool {
	return !m.Offline() && !m.LoggedIn()
}

// SetUser records the signed-in user. nil signs out.
func (m *Model) SetUser(u *gateway.User) {
	m.User = u
	if u == nil {
		m.Orchestrator.SetUserID("")
		return
	}
	m.Orchestrator.SetUserID(u.ID)
}

// ResumeSessionID returns the persisted backend session, if any
func (m *Model) ResumeSessionID() string {
	if m.State == nil || m.Offline() {
		return ""
	}
	id, err := m.State.SessionID()
	if err != nil {
		config.Logf("[Model] failed to read session id: %v", err)
		return ""
	}
	return id
}

func (m *Model) restoreLogin() {
	if m.State == nil || m.Backend == nil {
		return
	}

	token, err := m.State.AccessToken()
	if err != nil {
		config.Logf("[Model] failed to read access token: %v", err)
		return
	}
	user, err := m.State.User()
	if err != nil {
		config.Logf("[Model] failed to read user: %v", err)
		return
	}
	if token == "" || user == nil {
		return
	}

	m.Backend.SetAccessToken(token)
	m.SetUser(user)
	config.Logf("[Model] restored login for %s", user.Email)
}

func localUser() *gateway.User {
	name := os.Getenv("USER")
	if name == "" {
		name = "local"
	}
	return &gateway.User{ID: "local", Name: name}
}
