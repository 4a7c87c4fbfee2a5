package participants

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

var ErrUnknownKey = errors.New("unknown api key")

// Entry is one participant as stored in the directory file. KeyHash is the
// hex SHA-256 of the participant's API key; plain keys are never stored.
type Entry struct {
	models.Participant
	KeyHash string `json:"key_hash"`
}

// Directory resolves API keys to participants.
type Directory struct {
	mu    sync.RWMutex
	byKey map[string]models.Participant
}

func NewDirectory(entries ...Entry) (*Directory, error) {
	d := &Directory{byKey: make(map[string]models.Participant, len(entries))}
	for _, e := range entries {
		if err := d.add(e); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// LoadFile reads a JSON array of entries.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read participants file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse participants file %s: %w", path, err)
	}
	return NewDirectory(entries...)
}

func (d *Directory) add(e Entry) error {
	switch {
	case e.ID == "":
		return errors.New("participant id is required")
	case e.KeyHash == "":
		return fmt.Errorf("participant %q has no key_hash", e.ID)
	case e.Role != models.RoleBanker && e.Role != models.RoleCustomer:
		return fmt.Errorf("participant %q has unknown role %q", e.ID, e.Role)
	case e.Role == models.RoleCustomer && e.Account == "":
		return fmt.Errorf("customer %q has no account", e.ID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.byKey[e.KeyHash]; dup {
		return fmt.Errorf("participant %q reuses another participant's key", e.ID)
	}
	d.byKey[e.KeyHash] = e.Participant
	return nil
}

// Lookup hashes apiKey and returns the participant registered for it.
func (d *Directory) Lookup(apiKey string) (models.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.byKey[HashKey(apiKey)]
	if !ok {
		return models.Participant{}, ErrUnknownKey
	}
	return p, nil
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byKey)
}

// HashKey returns the hex SHA-256 digest stored as key_hash.
func HashKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
