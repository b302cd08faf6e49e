package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"oikenops/flowmetrics/internal/util"

	"github.com/zalando/go-keyring"
)

// KeyringStore persists credentials as JSON in the OS keychain.
type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetCredential(key string, cred Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("auth: encode credential: %w", err)
	}
	return keyring.Set(k.serviceName, util.NormalizeKey(key), string(data))
}

func (k *KeyringStore) GetCredential(key string) (Credential, error) {
	raw, err := keyring.Get(k.serviceName, util.NormalizeKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credential{}, ErrCredentialNotFound
		}
		return Credential{}, err
	}

	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		// Entries written before expiry tracking hold the bare token.
		return Credential{Token: raw}, nil
	}
	return cred, nil
}

func (k *KeyringStore) DeleteCredential(key string) error {
	err := keyring.Delete(k.serviceName, util.NormalizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrCredentialNotFound
	}
	return err
}
