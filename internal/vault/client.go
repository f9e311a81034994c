// Package vault seals reviewer notes with HashiCorp Vault's transit engine.
package vault

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/AhmedTrying/malaysiasafd/internal/config"
)

// ciphertextPrefix marks values produced by the transit engine
const ciphertextPrefix = "vault:"

// Sealer protects free-text fields at rest
type Sealer interface {
	Seal(ctx context.Context, plaintext string) (string, error)
	Open(ctx context.Context, sealed string) (string, error)
}

// PlainSealer stores values unchanged. Used when Vault is disabled.
type PlainSealer struct{}

func (PlainSealer) Seal(_ context.Context, plaintext string) (string, error) { return plaintext, nil }

// Open returns sealed unchanged; a ciphertext written while Vault was enabled
// cannot be read back without it.
func (PlainSealer) Open(_ context.Context, sealed string) (string, error) {
	if IsSealed(sealed) {
		return "", fmt.Errorf("value is sealed but vault is disabled")
	}
	return sealed, nil
}

// IsSealed reports whether s looks like a transit ciphertext
func IsSealed(s string) bool {
	return strings.HasPrefix(s, ciphertextPrefix)
}

// Client wraps the Vault API for transit encryption
type Client struct {
	client       *api.Client
	transitMount string
	keyName      string
}

// NewClient creates a Vault client, mounts the transit engine if needed and
// ensures the notes key exists.
func NewClient(ctx context.Context, cfg *config.VaultConfig) (*Client, error) {
	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	c := &Client{
		client:       client,
		transitMount: cfg.TransitMount,
		keyName:      cfg.NotesKey,
	}

	if err := c.initTransitEngine(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize transit engine: %w", err)
	}
	if err := c.createKey(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// initTransitEngine enables the transit secrets engine if not already enabled
func (c *Client) initTransitEngine(ctx context.Context) error {
	mounts, err := c.client.Sys().ListMountsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mounts: %w", err)
	}

	if _, exists := mounts[c.transitMount+"/"]; exists {
		return nil
	}

	err = c.client.Sys().MountWithContext(ctx, c.transitMount, &api.MountInput{
		Type:        "transit",
		Description: "Transit encryption for review notes",
	})
	if err != nil {
		return fmt.Errorf("failed to mount transit engine: %w", err)
	}
	return nil
}

// createKey is idempotent: writing an existing key leaves it untouched
func (c *Client) createKey(ctx context.Context) error {
	path := fmt.Sprintf("%s/keys/%s", c.transitMount, c.keyName)
	data := map[string]any{
		"type":       "aes256-gcm96",
		"exportable": false,
	}
	if _, err := c.client.Logical().WriteWithContext(ctx, path, data); err != nil {
		return fmt.Errorf("failed to create key %s: %w", c.keyName, err)
	}
	return nil
}

// Seal encrypts plaintext. The empty string stays empty.
func (c *Client) Seal(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	path := fmt.Sprintf("%s/encrypt/%s", c.transitMount, c.keyName)
	secret, err := c.client.Logical().WriteWithContext(ctx, path, map[string]any{
		"plaintext": base64.StdEncoding.EncodeToString([]byte(plaintext)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	if secret == nil {
		return "", fmt.Errorf("invalid ciphertext response")
	}

	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok {
		return "", fmt.Errorf("invalid ciphertext response")
	}
	return ciphertext, nil
}

// Open decrypts a value produced by Seal. Values stored before Vault was
// enabled are returned as is.
func (c *Client) Open(ctx context.Context, sealed string) (string, error) {
	if !IsSealed(sealed) {
		return sealed, nil
	}

	path := fmt.Sprintf("%s/decrypt/%s", c.transitMount, c.keyName)
	secret, err := c.client.Logical().WriteWithContext(ctx, path, map[string]any{
		"ciphertext": sealed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	if secret == nil {
		return "", fmt.Errorf("invalid plaintext response")
	}

	encoded, ok := secret.Data["plaintext"].(string)
	if !ok {
		return "", fmt.Errorf("invalid plaintext response")
	}
	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode plaintext: %w", err)
	}
	return string(plaintext), nil
}

// Health checks Vault health status
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if !health.Initialized {
		return fmt.Errorf("vault is not initialized")
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}
