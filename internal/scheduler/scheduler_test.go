package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name     string
	schedule string
	runs     int
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Execute(context.Context) error {
	j.runs++
	return nil
}

func TestRegisterAndRunByName(t *testing.T) {
	s := New(0)
	job := &countingJob{name: "sweep", schedule: "@every 1h"}

	require.NoError(t, s.Register(job))
	require.NoError(t, s.Register(&countingJob{name: "manual"}))

	assert.Equal(t, []string{"sweep", "manual"}, s.Jobs())
	require.NoError(t, s.RunByName(context.Background(), "sweep"))
	assert.Equal(t, 1, job.runs)

	assert.Error(t, s.RunByName(context.Background(), "missing"))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New(0)
	assert.Error(t, s.Register(&countingJob{name: "bad", schedule: "not a cron"}))
}
