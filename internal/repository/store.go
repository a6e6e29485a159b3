package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db          *DB
	afterCommit *[]func()

	Users     *UserRepository
	Players   *PlayerRepository
	Cases     *CaseRepository
	Evidence  *EvidenceRepository
	Notes     *NoteRepository
	Audit     *AuditRepository
	Requests  *CaseRequestRepository
	Sequences *SequenceRepository
}

// NewStore builds a Store over db.
func NewStore(db *DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepository(db),
		Players:   NewPlayerRepository(db),
		Cases:     NewCaseRepository(db),
		Evidence:  NewEvidenceRepository(db),
		Notes:     NewNoteRepository(db),
		Audit:     NewAuditRepository(db),
		Requests:  NewCaseRequestRepository(db),
		Sequences: NewSequenceRepository(db),
	}
}

// InTx runs fn with a Store whose repositories share a single transaction.
// Nothing inside fn may use the outer Store while the transaction is open.
// Hooks registered with AfterCommit run once the outermost transaction commits.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	hooks := s.afterCommit
	outermost := hooks == nil
	if outermost {
		hooks = &[]func(){}
	}

	err := s.db.Transaction(ctx, func(tx *DB) error {
		txStore := NewStore(tx)
		txStore.afterCommit = hooks
		return fn(txStore)
	})
	if err != nil || !outermost {
		return err
	}
	for _, hook := range *hooks {
		hook()
	}
	return nil
}

// AfterCommit defers fn until the enclosing InTx commits. Outside a transaction
// fn runs immediately; on rollback it never runs.
func (s *Store) AfterCommit(fn func()) {
	if s.afterCommit == nil {
		fn()
		return
	}
	*s.afterCommit = append(*s.afterCommit, fn)
}

// DB returns the underlying connection.
func (s *Store) DB() *DB {
	return s.db
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
