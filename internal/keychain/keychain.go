// Package keychain provides CredentialStore implementations over the OS
// secure store holding the Claude Code OAuth credentials.
package keychain

import (
	"context"
	"fmt"
	"os/exec"
	"os/user"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/claudebar/claudebar/internal/monitor"
)

// Service is the generic-password service name Claude Code stores its
// credentials under.
const Service = "Claude Code-credentials"

// SecurityCLI looks the payload up via the macOS `security` command, the same
// way the Claude Code CLI writes it.
type SecurityCLI struct {
	service string
}

// NewSecurityCLI returns a store reading the given keychain service.
func NewSecurityCLI(service string) *SecurityCLI {
	if service == "" {
		service = Service
	}
	return &SecurityCLI{service: service}
}

func (s *SecurityCLI) Lookup(ctx context.Context) ([]byte, error) {
	out, err := exec.CommandContext(ctx,
		"security", "find-generic-password", "-s", s.service, "-w").Output()
	if err != nil {
		return nil, fmt.Errorf("keychain lookup: %w", err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Keyring reads the payload through go-keyring, covering the Linux Secret
// Service and Windows Credential Manager backends.
type Keyring struct {
	service string
	account string
}

// NewKeyring returns a store for the given service/account pair. An empty
// account falls back to the current OS user.
func NewKeyring(service, account string) *Keyring {
	if service == "" {
		service = Service
	}
	if account == "" {
		if u, err := user.Current(); err == nil {
			account = u.Username
		}
	}
	return &Keyring{service: service, account: account}
}

func (k *Keyring) Lookup(ctx context.Context) ([]byte, error) {
	type result struct {
		payload string
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		payload, err := keyring.Get(k.service, k.account)
		ch <- result{payload, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("keyring lookup: %w", r.err)
		}
		return []byte(r.payload), nil
	}
}

// Default picks the store matching the running platform.
func Default() monitor.CredentialStore {
	if runtime.GOOS == "darwin" {
		return NewSecurityCLI(Service)
	}
	return NewKeyring(Service, "")
}
