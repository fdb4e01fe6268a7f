package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClock implements diskshell.Clock for testing across packages
type MockClock struct {
	mock.Mock
}

func (m *MockClock) Now() time.Time {
	args := m.Called()

	// Handle function return types (for clocks that advance per call)
	if fn, ok := args.Get(0).(func() time.Time); ok {
		return fn()
	}
	return args.Get(0).(time.Time)
}

// NewFixedClock returns a MockClock that always reports t
func NewFixedClock(t time.Time) *MockClock {
	c := &MockClock{}
	c.On("Now").Return(t)
	return c
}
