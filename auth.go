package pingrab

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// AuthContext holds an imported credential bundle attached to every harvester
// request. The bundle is replaced wholesale on import, never patched field by
// field. Safe for concurrent use.
type AuthContext struct {
	mu      sync.RWMutex
	cookies map[string]string
}

// exportedCookie is the common browser cookie-export shape. Extra fields
// (domain, path, expiry) are ignored.
type exportedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewAuthContext returns an empty (anonymous) auth context.
func NewAuthContext() *AuthContext {
	return &AuthContext{}
}

// ImportJSON parses a browser cookie export (JSON array of {name, value}
// objects) and atomically replaces the current bundle. Entries missing a name
// or value are skipped, not fatal. Returns the number of cookies imported; an
// error means the document was not valid JSON and the existing bundle is
// untouched.
func (a *AuthContext) ImportJSON(data []byte) (int, error) {
	var exported []exportedCookie
	if err := json.Unmarshal(data, &exported); err != nil {
		return 0, fmt.Errorf("parse cookie export: %w", err)
	}

	cookies := make(map[string]string, len(exported))
	for _, c := range exported {
		if c.Name == "" || c.Value == "" {
			continue
		}
		cookies[c.Name] = c.Value
	}
	if len(cookies) == 0 {
		return 0, fmt.Errorf("cookie export contains no usable entries")
	}

	a.mu.Lock()
	a.cookies = cookies
	a.mu.Unlock()
	return len(cookies), nil
}

// Authenticated reports whether a credential bundle has been imported.
func (a *AuthContext) Authenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cookies) > 0
}

// Cookies returns a snapshot of the current bundle, nil when anonymous.
func (a *AuthContext) Cookies() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.cookies) == 0 {
		return nil
	}
	out := make(map[string]string, len(a.cookies))
	for k, v := range a.cookies {
		out[k] = v
	}
	return out
}

// SaveFile persists the bundle as JSON so authentication survives restarts.
func (a *AuthContext) SaveFile(path string) error {
	a.mu.RLock()
	exported := make([]exportedCookie, 0, len(a.cookies))
	for name, value := range a.cookies {
		exported = append(exported, exportedCookie{Name: name, Value: value})
	}
	a.mu.RUnlock()

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

// LoadFile restores a previously saved bundle. A missing file is not an
// error; the context simply stays anonymous.
func (a *AuthContext) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	if _, err := a.ImportJSON(data); err != nil {
		return err
	}
	return nil
}
