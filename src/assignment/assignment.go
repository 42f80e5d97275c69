package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashkumarverma/cronx/src/command"
	"github.com/yashkumarverma/cronx/src/utils"
	"github.com/yashkumarverma/cronx/src/utils/cache"
)

// Manager handles job assignments to pods
type Manager struct {
	redisClient *cache.Client
	logger      *utils.StandardLogger
	config      *utils.Config
}

// NewManager creates a new assignment manager
func NewManager(redisClient *cache.Client, logger *utils.StandardLogger, config *utils.Config) *Manager {
	return &Manager{
		redisClient: redisClient,
		logger:      logger,
		config:      config,
	}
}

// AssignJobs hands the next NextJobCount jobs to pods in a round-robin
// fashion. Jobs held by a pod that is no longer in pods are handed out
// again. It returns the number of jobs assigned.
func (m *Manager) AssignJobs(ctx context.Context, pods []string) (int, error) {
	if len(pods) == 0 {
		return 0, fmt.Errorf("no pods available for job assignment")
	}

	jobCount := m.config.NextJobCount
	if jobCount <= 0 {
		jobCount = 3 // Default value if not set
	}

	jobs, err := m.redisClient.GetClient().ZRange(ctx, command.JobsSortedSetKey, 0, int64(jobCount)-1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	live := make(map[string]bool, len(pods))
	for _, podID := range pods {
		live[podID] = true
	}

	assigned := 0
	for i, jobID := range jobs {
		podID := pods[i%len(pods)]

		job, err := command.LoadJob(ctx, m.redisClient.GetClient(), jobID)
		if errors.Is(err, command.ErrJobNotFound) {
			continue
		}
		if err != nil {
			return assigned, err
		}

		if job.Status == command.Running || job.IsFinished() {
			continue
		}
		if job.Status == command.Assigned && live[job.AssignedTo] {
			continue
		}

		previous := job.AssignedTo
		job.AssignedTo = podID
		job.Status = command.Assigned
		if err := job.UpdateInRedis(ctx, m.redisClient.GetClient(), m.config.JobTTL); err != nil {
			m.logger.Errorw("Failed to update job assignment", "job_id", job.ID, "pod_id", podID, "error", err)
			continue
		}

		assigned++
		if previous != "" {
			m.logger.Infow("Reassigned job from dead pod", "job_id", job.ID, "pod_id", podID, "previous", previous)
		} else {
			m.logger.Debugw("Assigned job to pod", "job_id", job.ID, "pod_id", podID)
		}
	}

	return assigned, nil
}

// UnassignJobsFromPod returns the jobs assigned to podID to the scheduled
// state and reports how many were released. Running jobs are left alone.
func (m *Manager) UnassignJobsFromPod(ctx context.Context, podID string) (int, error) {
	jobs, err := m.redisClient.GetClient().ZRange(ctx, command.JobsSortedSetKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	released := 0
	for _, jobID := range jobs {
		job, err := command.LoadJob(ctx, m.redisClient.GetClient(), jobID)
		if errors.Is(err, command.ErrJobNotFound) {
			continue
		}
		if err != nil {
			return released, err
		}

		if job.AssignedTo != podID || job.Status != command.Assigned {
			continue
		}

		job.AssignedTo = ""
		job.Status = command.Scheduled
		if err := job.UpdateInRedis(ctx, m.redisClient.GetClient(), m.config.JobTTL); err != nil {
			m.logger.Errorw("Failed to unassign job", "job_id", job.ID, "pod_id", podID, "error", err)
			continue
		}
		released++
	}

	if released > 0 {
		m.logger.Infow("Unassigned jobs from pod", "pod_id", podID, "count", released)
	}
	return released, nil
}
