package service

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/stat/dto"
	"anoa.com/learnhub/internal/modules/user/repository"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

func DatabasePinger(db *gorm.DB) Pinger {
	return PingFunc(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

// RedisPinger returns nil for a nil client, which reports redis as disabled.
func RedisPinger(rdb *redis.Client) Pinger {
	if rdb == nil {
		return nil
	}
	return PingFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}

type StatService interface {
	// Health reports whether the database is reachable. Redis is optional and
	// only degrades the status.
	Health(ctx context.Context) (*dto.HealthReport, bool)
	Overview(ctx context.Context) (*dto.Overview, error)
}

type statService struct {
	accounts repository.AccountRepository
	database Pinger
	redis    Pinger
}

func NewStatService(accounts repository.AccountRepository, database, redis Pinger) StatService {
	return &statService{
		accounts: accounts,
		database: database,
		redis:    redis,
	}
}

func (s *statService) Health(ctx context.Context) (*dto.HealthReport, bool) {
	report := &dto.HealthReport{Status: "ok", Database: dto.StateUp, Redis: dto.StateDisabled}

	if err := s.database.Ping(ctx); err != nil {
		log.Printf("[Health] database ping failed: %v", err)
		report.Database = dto.StateDown
		report.Status = "unavailable"
	}

	if s.redis != nil {
		report.Redis = dto.StateUp
		if err := s.redis.Ping(ctx); err != nil {
			log.Printf("[Health] redis ping failed: %v", err)
			report.Redis = dto.StateDown
			if report.Status == "ok" {
				report.Status = "degraded"
			}
		}
	}

	return report, report.Database == dto.StateUp
}

func (s *statService) count(ctx context.Context, filter repository.AccountFilter) (int64, error) {
	filter.Limit = 1
	_, total, err := s.accounts.FindAll(ctx, filter)
	return total, err
}

type tally struct {
	filter repository.AccountFilter
	dst    *int64
}

func (s *statService) Overview(ctx context.Context) (*dto.Overview, error) {
	out := &dto.Overview{}
	inactive := false
	tallies := []tally{
		{repository.AccountFilter{}, &out.TotalUsers},
		{repository.AccountFilter{Role: entity.RoleStudent}, &out.TotalStudents},
		{repository.AccountFilter{Role: entity.RoleTeacher}, &out.TotalTeachers},
		{repository.AccountFilter{Role: entity.RoleReview}, &out.TotalReviews},
		{repository.AccountFilter{IsActive: &inactive}, &out.Inactive},
	}

	for _, t := range tallies {
		n, err := s.count(ctx, t.filter)
		if err != nil {
			return nil, err
		}
		*t.dst = n
	}
	return out, nil
}
