// Package sync is the optimistic mutation core: user actions apply locally
// first, the remote call follows, and provisional state is promoted or
// rolled back when the call resolves.
package sync

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"trove-sync-go/internal/models"
)

// User-facing failure messages.
const (
	msgOffline          = "connection required"
	msgPermissionDenied = "permission denied"
	msgStaleWrite       = "edit conflict: reload and reapply your change"
	msgNotConfirmed     = "entity is still awaiting confirmation"
)

// Result is what every mutation entry point returns to its UI consumer.
// Mutations never panic on expected failures; the outcome is carried here.
type Result struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	// Conflict marks a stale-write rejection so the UI can prompt a reload
	// instead of a blind retry.
	Conflict bool `json:"conflict,omitempty"`
	// Draft carries the submitted input back on a failed create so the UI
	// can restore the user's form for retry.
	Draft *Draft `json:"draft,omitempty"`
}

// Draft is the user input of a create action, preserved across rollback.
type Draft struct {
	Name           string  `json:"name,omitempty"`
	Category       string  `json:"category,omitempty"`
	Quantity       int64   `json:"quantity,omitempty"`
	EstimatedValue float64 `json:"estimatedValue,omitempty"`
}

func okResult(id string) Result {
	return Result{OK: true, ID: id}
}

func failResult(message string) Result {
	return Result{Message: message}
}

func deniedResult() Result {
	return Result{Message: msgPermissionDenied}
}

func offlineResult() Result {
	return Result{Message: msgOffline}
}

func conflictResult() Result {
	return Result{Message: msgStaleWrite, Conflict: true}
}

// ConnectivityFunc gates mutations: when it reports false the mutation is
// refused before any local or remote change. A nil gate means always online.
type ConnectivityFunc func() bool

// validateName bounds entity names at the point of mutation.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if utf8.RuneCountInString(name) > models.MaxNameLength {
		return fmt.Errorf("name exceeds %d characters", models.MaxNameLength)
	}
	return nil
}

// copyName derives the clone name, truncated to the name bound.
func copyName(name string) string {
	cloned := name + " (Copy)"
	runes := []rune(cloned)
	if len(runes) > models.MaxNameLength {
		return string(runes[:models.MaxNameLength])
	}
	return cloned
}
