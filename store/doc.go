// Package store persists records to a single flat text artifact.
//
// A record is one metadata line of five tab-separated fields followed by a
// content block enclosed in sentinel lines:
//
//	<kind>\t<path>\t<name>\t<timestamp>\t<size>
//	~0~
//	<content lines>
//	~0~
//
// New records are appended; deletions stream the store into a temporary
// artifact that then replaces the original, so an interrupted rewrite leaves
// either the old or the new store but never a mixture.
package store
