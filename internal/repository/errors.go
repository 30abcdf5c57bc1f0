package repository

import "github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/apperr"

// Storage implementations report failures through the shared taxonomy so
// callers can branch with errors.Is without importing driver packages.
var (
	ErrNotFound = apperr.ErrNotFound
	ErrConflict = apperr.ErrConflict
)
