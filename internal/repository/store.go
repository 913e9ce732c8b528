package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/ports/dispatchstore"
)

// Store is the PostgreSQL implementation of dispatchstore.Store.
type Store struct {
	*DeliveryRepo
	*DriverRepo
	db *pgxpool.Pool
}

// NewStore combines the delivery and driver repositories over one pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		DeliveryRepo: NewDeliveryRepo(db),
		DriverRepo:   NewDriverRepo(db),
		db:           db,
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}

var _ dispatchstore.Store = (*Store)(nil)
