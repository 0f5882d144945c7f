package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatwave/chat"
)

// ErrEmptyAnswer is returned when a source produced no text at all
var ErrEmptyAnswer = errors.New("empty answer")

// Request carries what a source may need to answer
type Request struct {
	Prompt    string
	UserID    string
	SessionID string
	History   []chat.Message
}

// Source produces the complete reply for a prompt in one piece
type Source interface {
	Answer(ctx context.Context, req Request) (string, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, req Request) (string, error)

func (f SourceFunc) Answer(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// CannedSource answers every prompt with a fixed demo reply after a short
// fake latency. It is used when no backend is configured.
type CannedSource struct {
	Latency time.Duration
}

func (c CannedSource) Answer(ctx context.Context, req Request) (string, error) {
	if c.Latency > 0 {
		t := time.NewTimer(c.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return CannedReply(req.Prompt), nil
}

// CannedReply is the demo reply used in simulated mode
func CannedReply(prompt string) string {
	return fmt.Sprintf(`This is a simulated response to: %q.

Here is some example code:
`+"```go"+`
greeting := "Hello World"
fmt.Println(greeting)
`+"```"+`

- Point 1
- Point 2
- Point 3

Hope this helps!`, prompt)
}

// SessionMessenger is the part of the backend gateway a GatewaySource needs
type SessionMessenger interface {
	SendMessage(ctx context.Context, sessionID, userID, message string) (string, error)
}

// GatewaySource asks the backend for the answer. The backend replies with the
// full text in one response; pacing happens afterwards in Replay.
type GatewaySource struct {
	Gateway SessionMessenger
}

func (g GatewaySource) Answer(ctx context.Context, req Request) (string, error) {
	if req.SessionID == "" {
		return "", fmt.Errorf("send message: no backend session")
	}
	answer, err := g.Gateway.SendMessage(ctx, req.SessionID, req.UserID, req.Prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
