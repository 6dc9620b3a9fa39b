package service

import (
	"errors"
	"log/slog"

	"huronportal/internal/apperror"
	"huronportal/internal/auth"
)

// Entity names used in change events and error messages.
const (
	EntityClient      = "client"
	EntityMachine     = "machine"
	EntityMachineType = "machineType"
	EntityUser        = "user"
)

const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionDuplicated = "duplicated"
)

// ChangeNotifier receives an event after every committed mutation.
type ChangeNotifier interface {
	Notify(entity, action, id string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, string) {}

func notifierOrNop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Actor identifies the authenticated caller of a mutating operation.
type Actor = auth.Session

// repoError maps repository sentinels onto the error taxonomy. *AppError
// values pass through unchanged.
func repoError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if appErr := apperror.Get(err); appErr != nil {
		return appErr
	}
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return apperror.NewNotFound(entity)
	case errors.Is(err, apperror.ErrVersionMismatch):
		return apperror.NewConcurrentModification(entity)
	case errors.Is(err, apperror.ErrDuplicate):
		return apperror.NewDuplicate(entity+" already exists", "")
	default:
		return apperror.NewInternal("failed to access "+entity+" store", err)
	}
}

// checkVersion rejects a write whose caller-supplied version is stale.
func checkVersion(expected *uint64, current uint64, entity string) error {
	if expected != nil && *expected != current {
		return apperror.NewConcurrentModification(entity)
	}
	return nil
}

func actorName(a *Actor) string {
	if a == nil {
		return ""
	}
	return a.Username
}

func actorID(a *Actor) string {
	if a == nil {
		return ""
	}
	return a.UserID
}

func logIfErr(log *slog.Logger, msg string, err error, args ...any) {
	if err != nil {
		log.Warn(msg, append(args, "error", err)...)
	}
}
