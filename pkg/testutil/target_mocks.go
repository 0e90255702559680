package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/arthur-debert/repatch/pkg/types"
)

// MockLocator is a testify mock of types.TargetLocator.
type MockLocator struct {
	mock.Mock
}

var _ types.TargetLocator = (*MockLocator)(nil)

// Locate returns the configured path and error.
func (m *MockLocator) Locate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// MockStore is a testify mock of types.TargetStore.
type MockStore struct {
	mock.Mock
}

var _ types.TargetStore = (*MockStore)(nil)

// Load returns the configured bytes and error.
func (m *MockStore) Load(path string) ([]byte, error) {
	args := m.Called(path)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Backup returns the configured result and error.
func (m *MockStore) Backup(path string) (types.BackupResult, error) {
	args := m.Called(path)
	return args.Get(0).(types.BackupResult), args.Error(1)
}

// Save records the written bytes.
func (m *MockStore) Save(path string, data []byte) error {
	args := m.Called(path, data)
	return args.Error(0)
}
