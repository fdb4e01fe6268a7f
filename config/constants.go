package config

import "github.com/brettbedarf/diskshell/internal/util"

// Bytes per MB
const MB = 1024 * 1024

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultStorePath is the store file, relative to the working directory
	DefaultStorePath = "disk.txt"

	// DefaultMaxStoreSize is the store size cap checked after every command
	DefaultMaxStoreSize int64 = 10 * MB

	// DefaultMaxLinkDepth bounds how many links are followed while reading
	// through a chain of links
	DefaultMaxLinkDepth = 40

	DefaultLogLvl = util.WarnLevel

	DefaultFsName = "diskshell"
	DefaultName   = "diskshell"
)

// CLI verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)
