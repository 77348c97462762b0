package store

import "github.com/starford/tmgr/internal/apperr"

const layer = "db"

// Error kinds reported by the store.
const (
	KindDatabase           apperr.Kind = "Database error"
	KindIO                 apperr.Kind = "IO error"
	KindNoTasksFound       apperr.Kind = "No tasks found"
	KindMultipleTasksFound apperr.Kind = "Multiple tasks found"
	KindExpectedOneTask    apperr.Kind = "Expected one task"
	KindSerialization      apperr.Kind = "Serialization error"
	KindNoExecutablePath   apperr.Kind = "Unable to determine tmgr executable path"
)
