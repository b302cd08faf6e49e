package auth

// MockStore is an in-memory credential store for testing.
type MockStore struct {
	creds map[string]Credential
}

func NewMockStore() *MockStore {
	return &MockStore{creds: make(map[string]Credential)}
}

func (m *MockStore) SetCredential(key string, cred Credential) error {
	m.creds[key] = cred
	return nil
}

func (m *MockStore) GetCredential(key string) (Credential, error) {
	cred, ok := m.creds[key]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func (m *MockStore) DeleteCredential(key string) error {
	if _, ok := m.creds[key]; !ok {
		return ErrCredentialNotFound
	}
	delete(m.creds, key)
	return nil
}
