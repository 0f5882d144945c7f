package model

import (
	"chatwave/auth"
	"chatwave/gateway"
	"chatwave/provider"
)

// Turn lifecycle

type TurnStartedMsg struct {
	Turn *Turn
}

type TurnFailedMsg struct {
	Turn *Turn // nil when rejected before anything was recorded
	Err  error
}

type TurnFetchedMsg struct {
	Turn *Turn
	Err  error
}

type DeliveryTickMsg struct {
	Turn     *Turn
	Fragment string
}

type TurnDoneMsg struct {
	Turn *Turn
}

// Sessions

type SessionsListMsg struct {
	Sessions []gateway.Session
	Err      error
}

type SessionLoadedMsg struct {
	SessionID string
	ChatID    string
	Err       error
}

type SessionDeletedMsg struct {
	ID  string
	Err error
}

type ChatExportedMsg struct {
	Path string
	Err  error
}

type ClipboardMsg struct {
	What string
	Err  error
}

// Models

type ModelsListMsg struct {
	Models []provider.ModelInfo
	Err    error
}

// ModelSwitchedMsg reports the new display name. Err is a failure to
// remember the choice; the switch itself already happened.
type ModelSwitchedMsg struct {
	Model string
	Err   error
}

// Login

type DeviceCodeMsg struct {
	Code *auth.DeviceCode
	Err  error
}

type LoginCompleteMsg struct {
	Login gateway.Login
	Err   error
}

type LoggedOutMsg struct {
	Err error
}
