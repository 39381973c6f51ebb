// Package deletionvector marks rows of data files as deleted by position.
//
// A Vector is a roaring bitmap of deleted row positions within one file.
// The Store persists vectors keyed by file path in a bbolt database so that
// later scans can skip rows already consumed by a compaction.
package deletionvector
