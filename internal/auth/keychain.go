// Package auth gates access to the remote generation service behind a
// user-selected API key. The rest of the tool treats the keychain as a
// boolean gate and never inspects credential contents.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Keychain holds the active credential and prompts interactively when
// one must be (re)selected.
type Keychain struct {
	credential string
	save       func(key string) error
	onChange   func(key string)
}

// NewKeychain creates a keychain seeded with any previously saved key.
// save persists a newly selected key; it may be nil.
func NewKeychain(initial string, save func(key string) error) *Keychain {
	return &Keychain{credential: initial, save: save}
}

// OnChange registers a callback invoked after a new key is selected.
func (k *Keychain) OnChange(fn func(key string)) {
	k.onChange = fn
}

// HasCredential reports whether a key is currently selected.
func (k *Keychain) HasCredential() bool {
	return k.credential != ""
}

// Credential returns the active key.
func (k *Keychain) Credential() string {
	return k.credential
}

// SelectCredential prompts the user for an API key with hidden input,
// persists it, and makes it the active credential.
func (k *Keychain) SelectCredential(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Print("Gemini API key: ")

	var key string
	if term.IsTerminal(int(syscall.Stdin)) {
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // Print newline after hidden input
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = string(keyBytes)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("no API key entered")
	}

	if k.save != nil {
		if err := k.save(key); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
	}

	k.credential = key
	if k.onChange != nil {
		k.onChange(key)
	}
	return nil
}
