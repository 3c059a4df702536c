// Package kv provides the durable key-value storage the lifecycle store
// persists into: the serialized state record, the legacy workspace blob,
// and the migration-completion flag, each under its own key.
package kv

// Known storage keys.
const (
	KeyState         = "state"
	KeyLegacy        = "legacyWorkspaces"
	KeyMigrationDone = "workspaceMigrationDone"
)

// Store is durable string storage. Get reports absence through its
// second return rather than an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}
