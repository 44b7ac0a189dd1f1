package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"sync"
)

// DefaultAPIKeyHeader carries API keys.
const DefaultAPIKeyHeader = "X-API-Key"

// KeyRecord describes one registered API key. Only the hash of the key
// is held; ID is a hash prefix that is safe to log.
type KeyRecord struct {
	ID        string
	Hash      string
	Principal string
	Roles     []string
}

// KeyLookup finds a key by its HashAPIKey digest. A nil record with a nil
// error means the key is unknown.
type KeyLookup interface {
	Lookup(ctx context.Context, hash string) (*KeyRecord, error)
}

// Keyring is an in-memory KeyLookup.
type Keyring struct {
	mu      sync.RWMutex
	records map[string]*KeyRecord
}

// NewKeyring returns an empty Keyring.
func NewKeyring() *Keyring {
	return &Keyring{records: map[string]*KeyRecord{}}
}

// StaticAPIKeys builds a Keyring from configured keys, each mapped to a
// name. The principal of a key is "api-key-<name>"; names listed in admins
// receive RoleAdmin. Blank keys are skipped.
func StaticAPIKeys(keys map[string]string, admins []string) *Keyring {
	k := NewKeyring()
	for key, name := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		rec := &KeyRecord{Principal: "api-key-" + name}
		if slices.Contains(admins, name) {
			rec.Roles = []string{RoleAdmin}
		}
		k.Put(key, rec)
	}
	return k
}

// Put registers key, filling in rec's Hash and ID.
func (k *Keyring) Put(key string, rec *KeyRecord) {
	rec.Hash = HashAPIKey(key)
	rec.ID = rec.Hash[:12]
	k.mu.Lock()
	k.records[rec.Hash] = rec
	k.mu.Unlock()
}

// Revoke forgets key and reports whether it was registered.
func (k *Keyring) Revoke(key string) bool {
	hash := HashAPIKey(key)
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.records[hash]
	delete(k.records, hash)
	return ok
}

func (k *Keyring) Lookup(_ context.Context, hash string) (*KeyRecord, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.records[hash], nil
}

func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.records)
}

// HashAPIKey returns the hex SHA-256 digest under which keys are stored.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuthenticator accepts keys found in a KeyLookup.
type APIKeyAuthenticator struct {
	header string
	keys   KeyLookup
}

// NewAPIKeyAuthenticator reads keys from header, DefaultAPIKeyHeader when empty.
func NewAPIKeyAuthenticator(header string, keys KeyLookup) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{header: header, keys: keys}
}

func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

func (a *APIKeyAuthenticator) Supports(_ context.Context, req *Request) bool {
	return req.Header(a.header) != ""
}

func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *Request) (*Result, error) {
	key := strings.TrimSpace(req.Header(a.header))
	if key == "" {
		return Rejected(ErrMissingCredentials, a.Name()), nil
	}
	rec, err := a.keys.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return Rejected(ErrInvalidCredentials, a.Name()), nil
	}
	return Accepted(&Identity{
		Principal: rec.Principal,
		Roles:     slices.Clone(rec.Roles),
		Method:    MethodAPIKey,
		Claims:    map[string]any{"auth_type": string(MethodAPIKey), "key_id": rec.ID},
	}), nil
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ KeyLookup     = (*Keyring)(nil)
)
