package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockSession implements shell.Session for testing the command loop
type MockSession struct {
	mock.Mock
}

func (m *MockSession) CurrentPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSession) List(w io.Writer) {
	m.Called(w)
}

func (m *MockSession) ListRecursive(w io.Writer) {
	m.Called(w)
}

func (m *MockSession) MakeDirectory(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockSession) ChangeDirectory(w io.Writer, target string) {
	m.Called(w, target)
}

func (m *MockSession) Link(w io.Writer, source, target string) error {
	args := m.Called(w, source, target)
	return args.Error(0)
}

func (m *MockSession) CopyIn(source string) error {
	args := m.Called(source)
	return args.Error(0)
}

func (m *MockSession) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockSession) RemoveDirectory(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockSession) Cat(w io.Writer, name string) error {
	args := m.Called(w, name)
	return args.Error(0)
}

func (m *MockSession) Sync() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSession) CheckStoreSize() error {
	args := m.Called()
	return args.Error(0)
}
