package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os/exec"
	"time"
)

// Hook runs an external command for every token, passing a JSON payload on
// stdin. It lets deployments attach arbitrary handlers to the token stream
// without linking them into the binary.
type Hook struct {
	command string
	timeout time.Duration
}

// hookPayload is the JSON document written to the hook's stdin.
type hookPayload struct {
	Token     string `json:"token"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// NewHook creates a Hook running command with the given per-invocation
// timeout.
func NewHook(command string, timeout time.Duration) *Hook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Hook{command: command, timeout: timeout}
}

// Emit runs the hook command synchronously. Failures are logged; a failing
// hook never propagates into the frame loop.
func (h *Hook) Emit(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	payload, err := json.Marshal(hookPayload{
		Token:     token,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Printf("hook emit %q: marshal: %v", token, err)
		return
	}

	cmd := exec.CommandContext(ctx, h.command)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Printf("hook emit %q: timeout after %v", token, h.timeout)
			return
		}
		if stderr.Len() > 0 {
			log.Printf("hook emit %q: %v, stderr: %s", token, err, stderr.String())
			return
		}
		log.Printf("hook emit %q: %v", token, err)
	}
}
