// Package schedule runs agents on cron schedules. Jobs come from config or
// the API and persist as a JSON file.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled prompt delivery to an agent.
type Job struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Cron    string `json:"cron"`
	AgentID string `json:"agentId"`
	Prompt  string `json:"prompt"`
	Enabled bool   `json:"enabled"`
}

// RunRecord tracks one job execution.
type RunRecord struct {
	JobID     string    `json:"jobId"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// TriggerFunc starts a run for an agent with the job's prompt and blocks
// until the run completes.
type TriggerFunc func(ctx context.Context, agentID, prompt string) error

// Scheduler manages jobs and fires agent runs.
type Scheduler struct {
	mu       sync.RWMutex
	cron     *cron.Cron
	jobs     map[string]*Job
	entryMap map[string]cron.EntryID // jobID → cron entry
	trigger  TriggerFunc
	jobsPath string
	runs     []RunRecord
}

const runTimeout = 5 * time.Minute

// NewScheduler builds a scheduler persisting its jobs to the JSON file at
// jobsPath.
func NewScheduler(jobsPath string, trigger TriggerFunc) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		jobs:     make(map[string]*Job),
		entryMap: make(map[string]cron.EntryID),
		trigger:  trigger,
		jobsPath: jobsPath,
	}
}

// Load reads saved jobs from disk.
func (s *Scheduler) Load() error {
	data, err := os.ReadFile(s.jobsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var jobs []*Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range jobs {
		s.jobs[job.ID] = job
		if job.Enabled {
			s.scheduleJob(job)
		}
	}
	return nil
}

// Save persists jobs to disk.
func (s *Scheduler) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked()
}

func (s *Scheduler) saveLocked() error {
	os.MkdirAll(filepath.Dir(s.jobsPath), 0755)
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.jobsPath, data, 0644)
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Add creates a new job.
func (s *Scheduler) Add(name, spec, agentID, prompt string) (*Job, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		ID:      fmt.Sprintf("job_%d", time.Now().UnixMilli()),
		Name:    name,
		Cron:    spec,
		AgentID: agentID,
		Prompt:  prompt,
		Enabled: true,
	}
	s.jobs[job.ID] = job
	s.scheduleJob(job)

	if err := s.saveLocked(); err != nil {
		slog.Warn("failed to save jobs", "error", err)
	}
	return job, nil
}

// AddConfigJob registers a config-sourced job under a stable id derived
// from its name, replacing whatever an earlier boot persisted for it. This
// keeps restarts idempotent: the same config entry always maps to the same
// job instead of minting a fresh one per boot.
func (s *Scheduler) AddConfigJob(name, spec, agentID, prompt string) (*Job, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := "cfg_" + name
	if entryID, ok := s.entryMap[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entryMap, id)
	}
	job := &Job{
		ID:      id,
		Name:    name,
		Cron:    spec,
		AgentID: agentID,
		Prompt:  prompt,
		Enabled: true,
	}
	s.jobs[id] = job
	s.scheduleJob(job)

	if err := s.saveLocked(); err != nil {
		slog.Warn("failed to save jobs", "error", err)
	}
	return job, nil
}

// Remove deletes a job.
func (s *Scheduler) Remove(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entryMap[jobID]; ok {
		s.cron.Remove(entryID)
		delete(s.entryMap, jobID)
	}
	delete(s.jobs, jobID)
	return s.saveLocked()
}

// List returns all jobs.
func (s *Scheduler) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	return jobs
}

// Runs returns the recorded executions, newest last.
func (s *Scheduler) Runs() []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RunRecord, len(s.runs))
	copy(out, s.runs)
	return out
}

// RunNow immediately triggers a job.
func (s *Scheduler) RunNow(jobID string) error {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	go s.executeJob(job)
	return nil
}

func (s *Scheduler) scheduleJob(job *Job) {
	entryID, err := s.cron.AddFunc(job.Cron, func() {
		s.executeJob(job)
	})
	if err != nil {
		slog.Error("failed to schedule job", "job", job.Name, "error", err)
		return
	}
	s.entryMap[job.ID] = entryID
}

func (s *Scheduler) executeJob(job *Job) {
	start := time.Now()
	slog.Info("scheduled run starting", "job", job.Name, "agent", job.AgentID)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	err := s.trigger(ctx, job.AgentID, job.Prompt)
	duration := time.Since(start)

	record := RunRecord{
		JobID:     job.ID,
		StartedAt: start,
		Duration:  duration.String(),
		Success:   err == nil,
	}
	if err != nil {
		record.Error = err.Error()
		slog.Error("scheduled run failed", "job", job.Name, "error", err, "duration", duration)
	} else {
		slog.Info("scheduled run completed", "job", job.Name, "duration", duration)
	}

	s.mu.Lock()
	s.runs = append(s.runs, record)
	if len(s.runs) > 1000 {
		s.runs = s.runs[len(s.runs)-500:]
	}
	s.mu.Unlock()
}
