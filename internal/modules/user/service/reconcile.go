package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/learnhub/internal/modules/user/repository"
)

// OrphanSweeper deletes student and teacher accounts left without a profile,
// which frees their email for a new registration.
type OrphanSweeper struct {
	accounts repository.AccountRepository
	grace    time.Duration
	schedule string
	now      func() time.Time
}

func NewOrphanSweeper(accounts repository.AccountRepository, grace time.Duration, schedule string) *OrphanSweeper {
	return &OrphanSweeper{
		accounts: accounts,
		grace:    grace,
		schedule: schedule,
		now:      time.Now,
	}
}

func (s *OrphanSweeper) Name() string     { return "orphan-account-sweep" }
func (s *OrphanSweeper) Schedule() string { return s.schedule }

func (s *OrphanSweeper) Execute(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep returns the number of accounts removed.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	orphans, err := s.accounts.FindOrphans(ctx, s.now().Add(-s.grace))
	if err != nil {
		return 0, fmt.Errorf("find orphan accounts: %w", err)
	}

	removed := 0
	for _, acc := range orphans {
		if err := s.accounts.Delete(ctx, acc.ID); err != nil {
			log.Printf("[Sweep] failed to delete orphan account %s: %v", acc.ID, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[Sweep] removed %d orphan accounts", removed)
	}
	return removed, nil
}
