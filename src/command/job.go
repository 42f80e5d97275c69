package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	Scheduled JobStatus = "scheduled"
	Assigned  JobStatus = "assigned"
	Running   JobStatus = "running"
	Failed    JobStatus = "failed"
	Success   JobStatus = "success"
)

// Redis keys
const (
	JobsSortedSetKey = "scheduler:jobs"
	JobDetailsKey    = "scheduler:job:%s" // Format string for job details
)

// ErrJobNotFound is returned by LoadJob when the job details have expired
// or were never stored.
var ErrJobNotFound = errors.New("job not found")

// Job represents a scheduled command execution
type Job struct {
	ID          string     `json:"id"`                    // Unique Job ID
	Schedule    string     `json:"schedule"`              // Schedule entry that planned the job
	CommandID   string     `json:"command_id"`            // Related Command
	Params      []string   `json:"params"`                // Command parameters
	Status      JobStatus  `json:"status"`                // Current status of the job
	AssignedTo  string     `json:"assigned_to,omitempty"` // Pod that will run the job
	ScheduledAt time.Time  `json:"scheduled_at"`          // When the job is scheduled to run
	StartedAt   *time.Time `json:"started_at,omitempty"`  // When the job actually started
	FinishedAt  *time.Time `json:"finished_at,omitempty"` // When the job finished
	Error       string     `json:"error,omitempty"`       // Error message if job failed
}

// NewJob creates a new job with a unique ID based on the schedule name and scheduled time
func NewJob(schedule, commandID string, params []string, scheduledAt time.Time) *Job {
	// Format: schedule_timestamp. A schedule fires at most once a minute.
	jobID := fmt.Sprintf("%s_%d", schedule, scheduledAt.Unix())

	return &Job{
		ID:          jobID,
		Schedule:    schedule,
		CommandID:   commandID,
		Params:      params,
		Status:      Scheduled,
		ScheduledAt: scheduledAt,
	}
}

// StoreInRedis stores the job in Redis using a sorted set for scheduling and a key for job details
func (j *Job) StoreInRedis(ctx context.Context, client *redis.Client, ttl time.Duration) error {
	jobKey := fmt.Sprintf(JobDetailsKey, j.ID)
	jobData, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal job data: %w", err)
	}

	// Store in sorted set with scheduled time as score
	pipe := client.Pipeline()
	pipe.Set(ctx, jobKey, jobData, ttl)
	pipe.ZAdd(ctx, JobsSortedSetKey, redis.Z{
		Score:  float64(j.ScheduledAt.Unix()),
		Member: j.ID,
	})

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store job in Redis: %w", err)
	}

	return nil
}

// UpdateInRedis updates the job status and details in Redis
func (j *Job) UpdateInRedis(ctx context.Context, client *redis.Client, ttl time.Duration) error {
	jobKey := fmt.Sprintf(JobDetailsKey, j.ID)
	jobData, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal job data: %w", err)
	}

	pipe := client.Pipeline()

	// Update job details
	pipe.Set(ctx, jobKey, jobData, ttl)

	// If job is completed (success or failed), remove from sorted set
	if j.IsFinished() {
		pipe.ZRem(ctx, JobsSortedSetKey, j.ID)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update job in Redis: %w", err)
	}

	return nil
}

// LoadJob reads the details of job id.
func LoadJob(ctx context.Context, client *redis.Client, id string) (*Job, error) {
	jobData, err := client.Get(ctx, fmt.Sprintf(JobDetailsKey, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(jobData, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Start marks the job as running and sets the start time
func (j *Job) Start(now time.Time) {
	j.StartedAt = &now
	j.Status = Running
}

// Complete marks the job as successful and sets the finish time
func (j *Job) Complete(now time.Time) {
	j.FinishedAt = &now
	j.Status = Success
}

// Fail marks the job as failed, sets the finish time and error message
func (j *Job) Fail(now time.Time, err error) {
	j.FinishedAt = &now
	j.Status = Failed
	if err != nil {
		j.Error = err.Error()
	}
}

// IsFinished reports whether the job reached a terminal status.
func (j *Job) IsFinished() bool {
	return j.Status == Success || j.Status == Failed
}

// IsOverdue checks if the job is overdue based on its scheduled time
func (j *Job) IsOverdue(now time.Time) bool {
	return now.After(j.ScheduledAt)
}

// Duration returns the duration of the job execution if it has finished
func (j *Job) Duration() *time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return nil
	}
	duration := j.FinishedAt.Sub(*j.StartedAt)
	return &duration
}

// String returns a string representation of the job
func (j *Job) String() string {
	return fmt.Sprintf("Job[%s] - Command: %s, Status: %s, Scheduled: %s",
		j.ID, j.CommandID, j.Status, j.ScheduledAt.Format(time.RFC3339))
}
