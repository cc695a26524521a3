package database

import (
	"errors"

	"institute/errdefs"

	"gorm.io/gorm"
)

// Store is the record store the assignment and certificate services run against.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that seed external-collaborator tables.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errdefs.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errdefs.ErrDuplicate
	default:
		return err
	}
}
