package postgres

import (
	"database/sql"

	"runnerly-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.CompensationRepository
	repository.UserRepository
	repository.PricingRuleRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		CompensationRepository: NewCompensationRepository(db),
		UserRepository:         NewUserRepository(db),
		PricingRuleRepository:  NewPricingRuleRepository(db),
	}
}
