package service

import "context"

// MockService is a test double for the Service interface
type MockService struct {
	// Function mocks - set these to customize behavior
	ValidateFunc func(path string) (string, error)
	ReloadFunc   func() error
	VersionFunc  func() (string, error)
	NotInstalled bool

	// Call tracking - check these to verify interactions
	ValidateCalls []string
	ReloadCalls   int
}

// NewMockService creates a MockService that accepts every config
func NewMockService() *MockService {
	return &MockService{ValidateCalls: make([]string, 0)}
}

// Name returns the service name
func (m *MockService) Name() string {
	return "mock"
}

// Validate records the call and invokes the mock function if set
func (m *MockService) Validate(ctx context.Context, path string) (string, error) {
	m.ValidateCalls = append(m.ValidateCalls, path)
	if m.ValidateFunc != nil {
		return m.ValidateFunc(path)
	}
	return "Valid configuration", nil
}

// Reload records the call and invokes the mock function if set
func (m *MockService) Reload(ctx context.Context) error {
	m.ReloadCalls++
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// Version invokes the mock function if set
func (m *MockService) Version(ctx context.Context) (string, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "v2.8.4", nil
}

// Installed reports the configured availability
func (m *MockService) Installed() bool {
	return !m.NotInstalled
}

// Reset clears all call tracking
func (m *MockService) Reset() {
	m.ValidateCalls = make([]string, 0)
	m.ReloadCalls = 0
}
