package schedule

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobsFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "jobs.json")
}

type triggerSpy struct {
	mu     sync.Mutex
	calls  []string
	fired  chan struct{}
	result error
}

func newTriggerSpy() *triggerSpy {
	return &triggerSpy{fired: make(chan struct{}, 16)}
}

func (s *triggerSpy) trigger(_ context.Context, agentID, prompt string) error {
	s.mu.Lock()
	s.calls = append(s.calls, agentID+":"+prompt)
	s.mu.Unlock()
	s.fired <- struct{}{}
	return s.result
}

func TestSchedulerAddRejectsInvalidCron(t *testing.T) {
	s := NewScheduler(jobsFile(t), newTriggerSpy().trigger)
	_, err := s.Add("bad", "not a cron", "default", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestSchedulerAddAndList(t *testing.T) {
	s := NewScheduler(jobsFile(t), newTriggerSpy().trigger)
	job, err := s.Add("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)
	assert.True(t, job.Enabled)
	assert.NotEmpty(t, job.ID)

	jobs := s.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, "digest", jobs[0].Name)
}

func TestSchedulerPersistence(t *testing.T) {
	path := jobsFile(t)
	s := NewScheduler(path, newTriggerSpy().trigger)
	_, err := s.Add("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)

	reloaded := NewScheduler(path, newTriggerSpy().trigger)
	require.NoError(t, reloaded.Load())
	jobs := reloaded.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, "digest", jobs[0].Name)
	assert.Equal(t, "summarize", jobs[0].Prompt)
}

func TestConfigJobsStableAcrossRestarts(t *testing.T) {
	path := jobsFile(t)

	// First boot: register the config job, which persists it.
	first := NewScheduler(path, newTriggerSpy().trigger)
	job, err := first.AddConfigJob("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)
	assert.Equal(t, "cfg_digest", job.ID)

	// Second boot: restore persisted jobs, then re-register the same config
	// entry. The stable id makes the registration an upsert, not a new job.
	second := NewScheduler(path, newTriggerSpy().trigger)
	require.NoError(t, second.Load())
	_, err = second.AddConfigJob("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)

	jobs := second.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, "cfg_digest", jobs[0].ID)
	assert.Len(t, second.entryMap, 1)
}

func TestConfigJobRejectsInvalidCron(t *testing.T) {
	s := NewScheduler(jobsFile(t), newTriggerSpy().trigger)
	_, err := s.AddConfigJob("bad", "whenever", "default", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestSchedulerRunNow(t *testing.T) {
	spy := newTriggerSpy()
	s := NewScheduler(jobsFile(t), spy.trigger)
	job, err := s.Add("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)

	require.NoError(t, s.RunNow(job.ID))
	select {
	case <-spy.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not fire")
	}

	spy.mu.Lock()
	defer spy.mu.Unlock()
	require.Len(t, spy.calls, 1)
	assert.Equal(t, "default:summarize", spy.calls[0])
}

func TestSchedulerRunNowUnknownJob(t *testing.T) {
	s := NewScheduler(jobsFile(t), newTriggerSpy().trigger)
	require.Error(t, s.RunNow("missing"))
}

func TestSchedulerRecordsRuns(t *testing.T) {
	spy := newTriggerSpy()
	s := NewScheduler(jobsFile(t), spy.trigger)
	job, err := s.Add("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)

	require.NoError(t, s.RunNow(job.ID))
	<-spy.fired

	// executeJob records after the trigger returns.
	require.Eventually(t, func() bool {
		return len(s.Runs()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	record := s.Runs()[0]
	assert.Equal(t, job.ID, record.JobID)
	assert.True(t, record.Success)
}

func TestSchedulerRemove(t *testing.T) {
	s := NewScheduler(jobsFile(t), newTriggerSpy().trigger)
	job, err := s.Add("digest", "0 9 * * *", "default", "summarize")
	require.NoError(t, err)

	require.NoError(t, s.Remove(job.ID))
	assert.Empty(t, s.List())
}
