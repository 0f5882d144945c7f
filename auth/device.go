package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"chatwave/config"
)

// ErrNoClientID means the [google] section has not been filled in
var ErrNoClientID = errors.New("google client_id is not configured")

var defaultScopes = []string{"openid", "email", "profile"}

// DeviceCode is what the user needs to finish sign-in in a browser
type DeviceCode struct {
	UserCode        string
	VerificationURL string
	Expiry          time.Time

	resp *oauth2.DeviceAuthResponse
}

// DeviceFlow runs the OAuth 2.0 device authorization grant against Google
type DeviceFlow struct {
	cfg *oauth2.Config
}

// NewDeviceFlow uses the Google endpoints. The client must be of type
// "TVs and Limited Input devices".
func NewDeviceFlow(clientID, clientSecret string) *DeviceFlow {
	endpoint := google.Endpoint
	endpoint.DeviceAuthURL = "https://oauth2.googleapis.com/device/code"
	return NewDeviceFlowWithEndpoint(clientID, clientSecret, endpoint)
}

// NewDeviceFlowWithEndpoint allows pointing the flow at another provider
func NewDeviceFlowWithEndpoint(clientID, clientSecret string, endpoint oauth2.Endpoint) *DeviceFlow {
	return &DeviceFlow{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			Scopes:       defaultScopes,
		},
	}
}

// Start requests a user code
func (f *DeviceFlow) Start(ctx context.Context) (*DeviceCode, error) {
	if f.cfg.ClientID == "" {
		return nil, ErrNoClientID
	}

	resp, err := f.cfg.DeviceAuth(ctx)
	if err != nil {
		config.Logf("[auth] device authorization failed: %v", err)
		return nil, fmt.Errorf("device authorization: %w", err)
	}

	url := resp.VerificationURIComplete
	if url == "" {
		url = resp.VerificationURI
	}
	return &DeviceCode{
		UserCode:        resp.UserCode,
		VerificationURL: url,
		Expiry:          resp.Expiry,
		resp:            resp,
	}, nil
}

// Wait polls until the user approves, denies, or the code expires, and
// decodes the returned ID token
func (f *DeviceFlow) Wait(ctx context.Context, code *DeviceCode) (Identity, error) {
	tok, err := f.cfg.DeviceAccessToken(ctx, code.resp)
	if err != nil {
		config.Logf("[auth] device token poll failed: %v", err)
		return Identity{}, fmt.Errorf("device token: %w", err)
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: token response has no id_token", ErrInvalidIDToken)
	}
	return DecodeIDToken(raw)
}
