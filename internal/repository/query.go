package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"huronportal/internal/apperror"
	"huronportal/internal/model"
	"huronportal/pkg/pagination"
)

// PageRequest asks for at most Limit rows after Cursor. A zero Limit means
// no limit.
type PageRequest struct {
	Limit  int
	Cursor string
}

// Page is one slice of an ordered listing. NextCursor is empty once the
// listing is exhausted.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// fetchPage runs q ordered by (sortColumn, id) using keyset pagination. It
// probes one row past the limit to decide whether a next cursor exists.
func fetchPage[T any](q *gorm.DB, sortColumn string, req PageRequest, sortKey func(*T) string, idOf func(*T) string) (Page[T], error) {
	if req.Cursor != "" {
		cur, err := pagination.DecodeCursor(req.Cursor)
		if err != nil {
			return Page[T]{}, apperror.NewValidation("Invalid continuation token",
				apperror.FieldError{Field: pagination.TokenParam, Message: err.Error()})
		}
		q = q.Where(fmt.Sprintf("(%s > ? OR (%s = ? AND id > ?))", sortColumn, sortColumn), cur.Key, cur.Key, cur.ID)
	}

	q = q.Order(sortColumn + " ASC").Order("id ASC")
	if req.Limit > 0 {
		q = q.Limit(req.Limit + 1)
	}

	items := make([]T, 0)
	if err := q.Find(&items).Error; err != nil {
		return Page[T]{}, err
	}

	var next string
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
		last := &items[len(items)-1]
		next = pagination.EncodeCursor(sortKey(last), idOf(last))
	}
	return Page[T]{Items: items, NextCursor: next}, nil
}

// containsAny adds a case-insensitive substring match of term against any of
// columns. LIKE wildcards in term match literally.
func containsAny(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", col)
		args[i] = pattern
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// updateVersioned writes the columns of entity guarded by its current version
// and bumps the version on success. Columns in omit are maintained by their own
// writers and are never overwritten from a possibly stale entity; after the
// write, entity is reloaded so they reflect the stored row. A lost race, or a
// row deleted in the meantime, yields apperror.ErrVersionMismatch.
func updateVersioned(db *gorm.DB, entity model.Versioned, omit ...string) error {
	prev := entity.CurrentVersion()
	entity.SetVersion(prev + 1)

	res := db.Model(entity).
		Where("version = ?", prev).
		Select("*").
		Omit(append([]string{"id", "created_at"}, omit...)...).
		Updates(entity)
	if res.Error != nil {
		entity.SetVersion(prev)
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		entity.SetVersion(prev)
		return apperror.ErrVersionMismatch
	}
	return reload(db, entity)
}

func reload(db *gorm.DB, entity model.Versioned) error {
	return translate(db.Where("id = ?", entity.GetID()).Take(entity).Error)
}

// deleteByID removes the row with the given id, reporting ErrNotFound when
// nothing matched.
func deleteByID(db *gorm.DB, value interface{}, id string) error {
	res := db.Where("id = ?", id).Delete(value)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", apperror.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.ErrNotFound
	default:
		return err
	}
}

// first loads one row into dest, returning (false, nil) when none matched.
func first(q *gorm.DB, dest interface{}) (bool, error) {
	err := q.Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
