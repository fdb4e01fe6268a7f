package shell

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/config"
	"github.com/brettbedarf/diskshell/filesystem"
	"github.com/brettbedarf/diskshell/internal/mocks"
	"github.com/brettbedarf/diskshell/store"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockSession(cwd string) *mocks.MockSession {
	m := &mocks.MockSession{}
	m.On("CurrentPath").Return(cwd)
	m.On("CheckStoreSize").Return(nil)
	return m
}

func TestExec_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		method string
		args   []any
		sync   bool
	}{
		{"ls", "List", []any{mock.Anything}, false},
		{"ls -R", "ListRecursive", []any{mock.Anything}, false},
		{"LS", "List", []any{mock.Anything}, false},
		{"mkdir docs", "MakeDirectory", []any{"docs"}, true},
		{"rm a.txt", "Remove", []any{"/docs/a.txt"}, true},
		{"rmdir sub", "RemoveDirectory", []any{"/docs/sub"}, true},
		{"cp a.txt", "CopyIn", []any{"a.txt"}, true},
		{"link a.txt b", "Link", []any{mock.Anything, "a.txt", "b"}, true},
		{"cd ..", "ChangeDirectory", []any{mock.Anything, ".."}, false},
		{"cat a.txt", "Cat", []any{mock.Anything, "a.txt"}, false},
		{"  Mkdir   spaced  ", "MakeDirectory", []any{"spaced"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			m := newMockSession("/docs")
			call := m.On(tt.method, tt.args...)
			switch tt.method {
			case "List", "ListRecursive", "ChangeDirectory":
			default:
				call.Return(nil)
			}
			if tt.sync {
				m.On("Sync").Return(nil).Once()
			}

			var out bytes.Buffer
			require.NoError(t, New(m, strings.NewReader(""), &out).Exec(tt.line))

			m.AssertExpectations(t)
			if !tt.sync {
				m.AssertNotCalled(t, "Sync")
			}
			m.AssertCalled(t, "CheckStoreSize")
		})
	}
}

func TestExec_IgnoredLines(t *testing.T) {
	t.Parallel()

	m := newMockSession("/")
	sh := New(m, strings.NewReader(""), &bytes.Buffer{})

	for _, line := range []string{"", "   ", "mkdir", "link only-one", "cd", "cat", "rm", "ls extra"} {
		require.NoError(t, sh.Exec(line), line)
	}
	m.AssertNotCalled(t, "MakeDirectory", mock.Anything)
	m.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "List", mock.Anything)
	m.AssertNotCalled(t, "Sync")
}

func TestExec_UnknownCommand(t *testing.T) {
	t.Parallel()

	m := newMockSession("/")
	var out bytes.Buffer
	require.NoError(t, New(m, strings.NewReader(""), &out).Exec("Frobnicate now"))

	assert.Equal(t, "Command not found: frobnicate\n", out.String())
	m.AssertCalled(t, "CheckStoreSize")
}

func TestExec_RecoverableErrorIsPrinted(t *testing.T) {
	t.Parallel()

	m := newMockSession("/")
	m.On("MakeDirectory", "docs").Return(&diskshell.PathError{Op: "mkdir", Path: "docs", Err: diskshell.ErrAlreadyExists})
	m.On("Sync").Return(nil).Once()

	var out bytes.Buffer
	require.NoError(t, New(m, strings.NewReader(""), &out).Exec("mkdir docs"))

	assert.Equal(t, "File exists: docs\n", out.String())
	m.AssertExpectations(t)
}

func TestExec_FatalErrorEndsCommand(t *testing.T) {
	t.Parallel()

	m := newMockSession("/")
	fatal := fmt.Errorf("%w: disk.txt", diskshell.ErrStoreNotFound)
	m.On("CopyIn", "x").Return(fatal)

	var out bytes.Buffer
	err := New(m, strings.NewReader(""), &out).Exec("cp x")

	require.ErrorIs(t, err, diskshell.ErrStoreNotFound)
	assert.Empty(t, out.String())
	m.AssertNotCalled(t, "Sync")
	m.AssertNotCalled(t, "CheckStoreSize")
}

func TestRun_StopsOnStoreSizeExceeded(t *testing.T) {
	t.Parallel()

	m := &mocks.MockSession{}
	m.On("CurrentPath").Return("/")
	m.On("List", mock.Anything)
	m.On("CheckStoreSize").Return(diskshell.ErrStoreSizeExceeded)

	var out bytes.Buffer
	err := New(m, strings.NewReader("ls\nls\n"), &out).Run()

	require.ErrorIs(t, err, diskshell.ErrStoreSizeExceeded)
	m.AssertNumberOfCalls(t, "List", 1)
}

func TestRun_SyncFailureIsFatal(t *testing.T) {
	t.Parallel()

	m := newMockSession("/")
	m.On("MakeDirectory", "d").Return(nil)
	m.On("Sync").Return(diskshell.ErrMalformedRecord)

	err := New(m, strings.NewReader("mkdir d\nmkdir e\n"), &bytes.Buffer{}).Run()

	require.ErrorIs(t, err, diskshell.ErrMalformedRecord)
	m.AssertNumberOfCalls(t, "MakeDirectory", 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestRun_InputError(t *testing.T) {
	t.Parallel()

	m := newMockSession("/")
	err := New(m, failingReader{}, &bytes.Buffer{}).Run()
	require.Error(t, err)
	assert.False(t, diskshell.IsFatal(err))
}

func TestRun_Session(t *testing.T) {
	t.Parallel()

	st := store.New(memfs.New(), "disk.txt")
	require.NoError(t, st.Init())
	host := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(host, "/host/a.txt", []byte("hi\n"), 0o644))
	clock := mocks.NewFixedClock(time.Date(2024, time.March, 4, 10, 15, 0, 0, time.UTC))

	fsys, err := filesystem.NewFS(config.NewDefaultConfig(), st, host, filesystem.WithClock(clock))
	require.NoError(t, err)

	script := strings.Join([]string{
		"mkdir docs",
		"ls",
		"cd docs",
		"cp /host/a.txt",
		"ls",
		"link a.txt b",
		"cat b",
		"cd ..",
		"rmdir nope",
		"rm docs",
		"Bogus",
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, New(fsys, strings.NewReader(script), &out).Run())

	want := "/ > " +
		"/ > D   docs                Mar 04 2024 10:15\n" +
		"/ > " +
		"/docs > " +
		"/docs > D   .                   Mar 04 2024 10:15\n" +
		"D   ..                  Mar 04 2024 10:15\n" +
		"F   a.txt               Mar 04 2024 10:15\t2\n" +
		"/docs > " +
		"/docs > hi\n" +
		"/docs > " +
		"/ > File not found: /nope\n" +
		"/ > /docs: Is a directory\n" +
		"/ > Command not found: bogus\n" +
		"/ > \n"
	assert.Equal(t, want, out.String())

	recs, err := st.Records()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "/docs/b", recs[2].Path)
	assert.Equal(t, "/docs/a.txt", recs[2].Content)
}
