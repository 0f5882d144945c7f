package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/auth"
	"chatwave/config"
	"chatwave/gateway"
)

const loginTimeout = 10 * time.Minute

// StartDeviceLogin requests a Google device code for the login screen
func (m *Model) StartDeviceLogin() tea.Cmd {
	flow := m.DeviceFlow
	return func() tea.Msg {
		if flow == nil {
			return DeviceCodeMsg{Err: errors.New("google sign-in is not available offline")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		code, err := flow.Start(ctx)
		if err != nil {
			config.Logf("[Auth] device code request failed: %v", err)
		}
		return DeviceCodeMsg{Code: code, Err: err}
	}
}

// WaitDeviceLogin polls Google until the user approves, then signs in to the backend
func (m *Model) WaitDeviceLogin(code *auth.DeviceCode) tea.Cmd {
	flow := m.DeviceFlow
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()

		identity, err := flow.Wait(ctx, code)
		if err != nil {
			config.Logf("[Auth] device login failed: %v", err)
			return LoginCompleteMsg{Err: err}
		}
		login, err := m.exchange(ctx, identity)
		return LoginCompleteMsg{Login: login, Err: err}
	}
}

// LoginWithIDToken signs in with a pasted Google ID token
func (m *Model) LoginWithIDToken(raw string) tea.Cmd {
	raw = strings.TrimSpace(raw)
	return func() tea.Msg {
		identity, err := auth.DecodeIDToken(raw)
		if err != nil {
			return LoginCompleteMsg{Err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		login, err := m.exchange(ctx, identity)
		return LoginCompleteMsg{Login: login, Err: err}
	}
}

// exchange trades the identity for a backend token and persists both
func (m *Model) exchange(ctx context.Context, identity auth.Identity) (gateway.Login, error) {
	if m.Backend == nil {
		return gateway.Login{}, errors.New("no backend configured")
	}

	login, err := m.Backend.LoginWithGoogle(ctx, identity.Profile())
	if err != nil {
		config.Logf("[Auth] backend login failed: %v", err)
		return gateway.Login{}, fmt.Errorf("backend login: %w", err)
	}

	m.Backend.SetAccessToken(login.AccessToken)
	if m.State != nil {
		if err := m.State.SetAccessToken(login.AccessToken); err != nil {
			return login, err
		}
		if err := m.State.SetUser(login.User); err != nil {
			return login, err
		}
	}
	config.Logf("[Auth] signed in as %s", login.User.Email)
	return login, nil
}

// ApplyLogin records a completed login on the UI side
func (m *Model) ApplyLogin(login gateway.Login) {
	user := login.User
	m.SetUser(&user)
}

// Logout clears token, user and session id, and drops every chat the
// signed-in user had open
func (m *Model) Logout() tea.Cmd {
	state := m.State
	backend := m.Backend
	m.SetUser(nil)
	m.Sessions = nil
	for _, c := range m.Store.Chats() {
		_ = m.Store.DeleteChat(c.ID)
	}
	m.Store.CreateChat()
	return func() tea.Msg {
		if backend != nil {
			backend.SetAccessToken("")
		}
		if state == nil {
			return LoggedOutMsg{}
		}
		return LoggedOutMsg{Err: state.Logout()}
	}
}
