package present

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"sync"
)

// Return URL parameters set by the checkout page.
const (
	ParamPaymentSuccess  = "payment_success"
	ParamPaymentCanceled = "payment_canceled"
)

// Notices produced by the gate.
const (
	NoticePaymentSuccess  = "Payment successful! Your top leads are now visible."
	NoticePaymentCanceled = "Payment canceled. You can try again whenever you're ready."
	NoticeUnlocked        = "Demo payment successful! Your leads are now unlocked."
)

const sessionValue = "true"

// ErrSession wraps failures reading or writing the session file.
var ErrSession = errors.New("unlock session")

// Gate is a client-only unlock flag for the current session. It is not a
// payment check. When a session file is set the flag survives between runs
// of the same session.
type Gate struct {
	mu       sync.Mutex
	unlocked bool
	path     string
}

// NewGate loads the flag from sessionFile. An empty path keeps the flag in
// memory only; a missing file means locked.
func NewGate(sessionFile string) (*Gate, error) {
	g := &Gate{path: sessionFile}
	if sessionFile == "" {
		return g, nil
	}
	raw, err := os.ReadFile(sessionFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return g, nil
	case err != nil:
		return nil, fmt.Errorf("%w: read %s: %w", ErrSession, sessionFile, err)
	}
	g.unlocked = strings.TrimSpace(string(raw)) == sessionValue
	return g, nil
}

// Unlocked reports whether contact details may be shown.
func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// Unlock flips the flag on and persists it.
func (g *Gate) Unlock() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.unlocked = true
	if g.path == "" {
		return nil
	}
	if err := os.WriteFile(g.path, []byte(sessionValue), 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrSession, g.path, err)
	}
	return nil
}

// ApplyReturnURL reads the payment result parameters from raw once. A
// successful payment unlocks the gate. Both parameters are removed from the
// returned URL; other parameters are kept. notice is empty when neither
// parameter was set.
func (g *Gate) ApplyReturnURL(raw string) (cleaned, notice string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, "", fmt.Errorf("%w: parse return url: %w", ErrSession, err)
	}

	q := u.Query()
	switch {
	case q.Get(ParamPaymentSuccess) == "true":
		if err := g.Unlock(); err != nil {
			return raw, "", err
		}
		notice = NoticePaymentSuccess
	case q.Get(ParamPaymentCanceled) == "true":
		notice = NoticePaymentCanceled
	}

	if q.Has(ParamPaymentSuccess) || q.Has(ParamPaymentCanceled) {
		q.Del(ParamPaymentSuccess)
		q.Del(ParamPaymentCanceled)
		u.RawQuery = q.Encode()
	}
	return u.String(), notice, nil
}
