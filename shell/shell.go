// Package shell reads commands line by line and dispatches them to a
// file system session.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/internal/util"
)

// Session is the file system the shell drives
type Session interface {
	CurrentPath() string
	List(w io.Writer)
	ListRecursive(w io.Writer)
	MakeDirectory(name string) error
	ChangeDirectory(w io.Writer, target string)
	Link(w io.Writer, source, target string) error
	CopyIn(source string) error
	Remove(path string) error
	RemoveDirectory(path string) error
	Cat(w io.Writer, name string) error
	Sync() error
	CheckStoreSize() error
}

type command struct {
	minArgs int
	mutates bool // tree is re-synchronized from the store afterwards
	run     func(sh *Shell, args []string) error
}

var commands = map[string]command{
	"ls": {run: func(sh *Shell, args []string) error {
		switch {
		case len(args) == 0:
			sh.fs.List(sh.out)
		case args[0] == "-R":
			sh.fs.ListRecursive(sh.out)
		}
		return nil
	}},
	"mkdir": {minArgs: 1, mutates: true, run: func(sh *Shell, args []string) error {
		return sh.fs.MakeDirectory(args[0])
	}},
	"rm": {minArgs: 1, mutates: true, run: func(sh *Shell, args []string) error {
		return sh.fs.Remove(diskshell.JoinPath(sh.fs.CurrentPath(), args[0]))
	}},
	"rmdir": {minArgs: 1, mutates: true, run: func(sh *Shell, args []string) error {
		return sh.fs.RemoveDirectory(diskshell.JoinPath(sh.fs.CurrentPath(), args[0]))
	}},
	"cp": {minArgs: 1, mutates: true, run: func(sh *Shell, args []string) error {
		return sh.fs.CopyIn(args[0])
	}},
	"link": {minArgs: 2, mutates: true, run: func(sh *Shell, args []string) error {
		return sh.fs.Link(sh.out, args[0], args[1])
	}},
	"cd": {minArgs: 1, run: func(sh *Shell, args []string) error {
		sh.fs.ChangeDirectory(sh.out, args[0])
		return nil
	}},
	"cat": {minArgs: 1, run: func(sh *Shell, args []string) error {
		return sh.fs.Cat(sh.out, args[0])
	}},
}

// Shell is an interactive loop over a Session
type Shell struct {
	fs  Session
	in  *bufio.Scanner
	out io.Writer
}

func New(fs Session, in io.Reader, out io.Writer) *Shell {
	return &Shell{fs: fs, in: bufio.NewScanner(in), out: out}
}

// Run prompts and executes commands until input ends. Per-command failures
// are printed and the loop continues; a fatal error ends Run and is returned.
func (sh *Shell) Run() error {
	logger := util.GetLogger("Shell")

	for {
		fmt.Fprintf(sh.out, "%s > ", sh.fs.CurrentPath())
		if !sh.in.Scan() {
			if err := sh.in.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			fmt.Fprintln(sh.out)
			logger.Debug().Msg("Input closed, ending session")
			return nil
		}
		if err := sh.Exec(sh.in.Text()); err != nil {
			logger.Error().Err(err).Msg("Fatal error, ending session")
			return err
		}
	}
}

// Exec runs a single command line
func (sh *Shell) Exec(line string) error {
	logger := util.GetLogger("Shell")

	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	name := strings.ToLower(words[0])
	args := words[1:]

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(sh.out, "Command not found: %s\n", name)
		return sh.fs.CheckStoreSize()
	}
	if len(args) < cmd.minArgs {
		logger.Debug().Str("command", name).Msg("Missing arguments, ignored")
		return nil
	}

	if err := cmd.run(sh, args); err != nil {
		if diskshell.IsFatal(err) {
			return err
		}
		logger.Debug().Err(err).Str("command", name).Msg("Command failed")
		fmt.Fprintln(sh.out, diskshell.Message(err))
	}
	if cmd.mutates {
		if err := sh.fs.Sync(); err != nil {
			return err
		}
	}
	return sh.fs.CheckStoreSize()
}
