package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yashkumarverma/cronx/src/command"
	"github.com/yashkumarverma/cronx/src/cron"
	"github.com/yashkumarverma/cronx/src/utils"
	"github.com/yashkumarverma/cronx/src/utils/cache"
)

// CursorKey holds the last planned fire time of a schedule entry.
const CursorKey = "scheduler:cursor:%s"

// LeaderChecker reports whether this pod currently plans jobs.
type LeaderChecker interface {
	IsLeader(ctx context.Context) (bool, error)
}

// Scheduler handles job scheduling for the leader pod
type Scheduler struct {
	redisClient *cache.Client
	logger      *utils.StandardLogger
	config      *utils.Config
	parser      *Parser
	fetcher     ScheduleFetcher
	leader      LeaderChecker
	commands    map[string]command.Command
	now         func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(redisClient *cache.Client, logger *utils.StandardLogger, config *utils.Config, fetcher ScheduleFetcher, leader LeaderChecker) *Scheduler {
	return &Scheduler{
		redisClient: redisClient,
		logger:      logger,
		config:      config,
		parser:      NewParser(),
		fetcher:     fetcher,
		leader:      leader,
		commands:    make(map[string]command.Command),
		now:         time.Now,
	}
}

// RegisterCommand adds a command to the scheduler
func (s *Scheduler) RegisterCommand(cmd command.Command) {
	s.commands[cmd.ID()] = cmd
}

// ScheduleJobs plans every firing that falls inside the scheduling window
// and returns the number of jobs stored. Only the leader plans.
func (s *Scheduler) ScheduleJobs(ctx context.Context) (int, error) {
	isLeader, err := s.leader.IsLeader(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check leadership: %w", err)
	}
	if !isLeader {
		s.logger.Debugw("Not the leader, skipping scheduling")
		return 0, nil
	}

	now := s.now()
	endTime := now.Add(s.config.SchedulingWindow)

	planned := 0
	for _, entry := range s.fetcher.Schedules() {
		n, err := s.planEntry(ctx, entry, now, endTime)
		planned += n
		if errors.Is(err, cron.ErrUnsatisfiable) {
			s.logger.Warnw("Schedule never fires, skipping", "schedule", entry.Name, "cron", entry.CronExpression, "error", err)
			continue
		}
		if err != nil {
			return planned, err
		}
	}

	if planned > 0 {
		s.logger.Infow("Scheduled jobs", "count", planned, "until", endTime.Format(time.RFC3339))
	}
	return planned, nil
}

func (s *Scheduler) planEntry(ctx context.Context, entry CommandSchedule, now, endTime time.Time) (int, error) {
	schedule, err := s.parser.Parse(entry.CronExpression)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cron expression for %s: %w", entry.Name, err)
	}

	from, err := s.cursor(ctx, entry.Name)
	if err != nil {
		return 0, err
	}
	if from.Before(now) {
		from = now
	}

	planned := 0
	for {
		next, err := schedule.Next(from)
		if err != nil {
			return planned, err
		}
		if !next.Before(endTime) {
			return planned, nil
		}

		stored, err := s.storeJob(ctx, command.NewJob(entry.Name, entry.CommandID, entry.Parameters, next))
		if err != nil {
			return planned, err
		}
		if stored {
			planned++
		}

		if err := s.setCursor(ctx, entry.Name, next); err != nil {
			return planned, err
		}
		from = next
	}
}

// storeJob stores job unless a job with the same ID already exists, so an
// expired cursor never resets the status of a planned job.
func (s *Scheduler) storeJob(ctx context.Context, job *command.Job) (bool, error) {
	exists, err := s.redisClient.GetClient().Exists(ctx, fmt.Sprintf(command.JobDetailsKey, job.ID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check job %s: %w", job.ID, err)
	}
	if exists > 0 {
		return false, nil
	}
	if err := job.StoreInRedis(ctx, s.redisClient.GetClient(), s.config.JobTTL); err != nil {
		return false, err
	}
	s.logger.Debugw("Stored job", "job_id", job.ID, "scheduled_at", job.ScheduledAt.Format(time.RFC3339))
	return true, nil
}

func (s *Scheduler) cursor(ctx context.Context, name string) (time.Time, error) {
	val, ok, err := s.redisClient.Get(ctx, fmt.Sprintf(CursorKey, name))
	if err != nil || !ok {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		s.logger.Warnw("Discarding unreadable cursor", "schedule", name, "value", val)
		return time.Time{}, nil
	}
	return at, nil
}

func (s *Scheduler) setCursor(ctx context.Context, name string, at time.Time) error {
	return s.redisClient.SetWithExpiry(ctx, fmt.Sprintf(CursorKey, name), at.Format(time.RFC3339Nano), s.config.JobTTL)
}

// RunDueJobs executes the due jobs assigned to podID and returns how many
// were run. A failing command marks its job failed and does not stop the
// remaining jobs.
func (s *Scheduler) RunDueJobs(ctx context.Context, podID string) (int, error) {
	now := s.now()
	ids, err := s.redisClient.GetClient().ZRangeByScore(ctx, command.JobsSortedSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due jobs: %w", err)
	}

	ran := 0
	for _, id := range ids {
		job, err := command.LoadJob(ctx, s.redisClient.GetClient(), id)
		if errors.Is(err, command.ErrJobNotFound) {
			// details expired before the job ran
			s.redisClient.GetClient().ZRem(ctx, command.JobsSortedSetKey, id)
			continue
		}
		if err != nil {
			return ran, err
		}
		if job.Status != command.Assigned || job.AssignedTo != podID {
			continue
		}

		s.execute(ctx, job)
		ran++
	}
	return ran, nil
}

func (s *Scheduler) execute(ctx context.Context, job *command.Job) {
	client := s.redisClient.GetClient()
	logger := utils.GetChildLogger(s.logger, map[string]string{"job_id": job.ID, "command": job.CommandID})

	job.Start(s.now())
	if err := job.UpdateInRedis(ctx, client, s.config.JobTTL); err != nil {
		logger.Errorw("Failed to mark job running", "error", err)
		return
	}

	var runErr error
	cmd, ok := s.commands[job.CommandID]
	if !ok {
		runErr = fmt.Errorf("unknown command %q", job.CommandID)
	} else {
		runErr = cmd.Execute(ctx, job.Params)
	}

	if runErr != nil {
		job.Fail(s.now(), runErr)
		logger.Errorw("Job failed", "error", runErr)
	} else {
		job.Complete(s.now())
		logger.Infow("Job finished", "duration", job.Duration().String())
	}
	if err := job.UpdateInRedis(ctx, client, s.config.JobTTL); err != nil {
		logger.Errorw("Failed to record job result", "error", err)
	}
}

// Upcoming returns the next n jobs in fire order.
func (s *Scheduler) Upcoming(ctx context.Context, n int) ([]*command.Job, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := s.redisClient.GetClient().ZRange(ctx, command.JobsSortedSetKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming jobs: %w", err)
	}

	jobs := make([]*command.Job, 0, len(ids))
	for _, id := range ids {
		job, err := command.LoadJob(ctx, s.redisClient.GetClient(), id)
		if errors.Is(err, command.ErrJobNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
