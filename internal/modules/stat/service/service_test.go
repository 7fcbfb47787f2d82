package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/stat/dto"
	"anoa.com/learnhub/internal/testutil"
)

var (
	up   = PingFunc(func(context.Context) error { return nil })
	down = PingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		database Pinger
		redis    Pinger
		ok       bool
		want     dto.HealthReport
	}{
		{"all up", up, up, true, dto.HealthReport{Status: "ok", Database: dto.StateUp, Redis: dto.StateUp}},
		{"redis disabled", up, nil, true, dto.HealthReport{Status: "ok", Database: dto.StateUp, Redis: dto.StateDisabled}},
		{"redis down", up, down, true, dto.HealthReport{Status: "degraded", Database: dto.StateUp, Redis: dto.StateDown}},
		{"database down", down, up, false, dto.HealthReport{Status: "unavailable", Database: dto.StateDown, Redis: dto.StateUp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewStatService(nil, tt.database, tt.redis)
			report, ok := svc.Health(context.Background())
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, *report)
		})
	}
}

func TestOverviewCountsAccounts(t *testing.T) {
	db := testutil.NewDB()
	db.SeedAccount(entity.NewAccount("a@x.com", entity.RoleAdmin, "h"))
	db.SeedAccount(entity.NewAccount("s1@x.com", entity.RoleStudent, "h"))
	disabled := entity.NewAccount("s2@x.com", entity.RoleStudent, "h")
	disabled.IsActive = false
	db.SeedAccount(disabled)
	db.SeedAccount(entity.NewAccount("t@x.com", entity.RoleTeacher, "h"))

	overview, err := NewStatService(db.Accounts(), up, nil).Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &dto.Overview{
		TotalUsers:    4,
		TotalStudents: 2,
		TotalTeachers: 1,
		Inactive:      1,
	}, overview)
}
