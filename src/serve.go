package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yashkumarverma/cronx/src/assignment"
	"github.com/yashkumarverma/cronx/src/command"
	"github.com/yashkumarverma/cronx/src/leader"
	"github.com/yashkumarverma/cronx/src/scheduler"
	"github.com/yashkumarverma/cronx/src/utils"
	"github.com/yashkumarverma/cronx/src/utils/cache"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a scheduler pod until SIGINT or SIGTERM",
		Long: "Joins the pod registry in redis. The leader pod plans the jobs of every schedule " +
			"and assigns them round-robin to live pods; every pod runs the jobs assigned to it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			config := utils.GetConfig(ctx)
			logger := utils.NewLogger(config.LoggerOptions())
			utils.SetAppLogger(logger)
			ctx = utils.LoggerWithCtx(ctx, logger)

			redisClient, err := cache.NewClient(ctx, config)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			return serve(ctx, config, redisClient, command.NewCommandRegistry())
		},
	}
}

// serve runs the pod until ctx is done, then releases its jobs and leaves
// the registry.
func serve(ctx context.Context, config *utils.Config, redisClient *cache.Client, registry *command.CommandRegistry) error {
	logger := utils.GetAppLogger(ctx)

	for id, desc := range registry.GetCommandDescriptions() {
		logger.Infow("Supported command", "command", id, "description", desc)
	}

	fetcher, err := scheduler.NewLocalScheduleFetcher(registry)
	if err != nil {
		return err
	}
	if config.SchedulesFile != "" {
		if err := fetcher.LoadFile(config.SchedulesFile); err != nil {
			return err
		}
	}

	podManager := leader.NewPodManager(redisClient, logger, config)
	if err := podManager.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize pod manager: %w", err)
	}
	podID := podManager.GetPodID()

	sched := scheduler.NewScheduler(redisClient, logger, config, fetcher, podManager)
	for _, cmd := range registry.GetCommands() {
		sched.RegisterCommand(cmd)
	}
	assigner := assignment.NewManager(redisClient, logger, config)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		podManager.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		every(ctx, config.PlanInterval, func() {
			plan(ctx, logger, sched, podManager, assigner)
		})
	}()
	go func() {
		defer wg.Done()
		every(ctx, config.RunInterval, func() {
			if _, err := sched.RunDueJobs(ctx, podID); err != nil {
				logger.Errorw("Failed to run due jobs", "error", err)
			}
		})
	}()

	logger.Infow("Pod started", "pod_id", podID)
	<-ctx.Done()
	wg.Wait()

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if _, err := assigner.UnassignJobsFromPod(shutdownCtx, podID); err != nil {
		logger.Errorw("Failed to release jobs", "error", err)
	}
	if err := podManager.Deregister(shutdownCtx); err != nil {
		logger.Errorw("Failed to leave pod registry", "error", err)
	}
	return nil
}

// plan lets the leader extend the job window and hand jobs to live pods.
func plan(ctx context.Context, logger *utils.StandardLogger, sched *scheduler.Scheduler, pods *leader.PodManager, assigner *assignment.Manager) {
	if _, err := sched.ScheduleJobs(ctx); err != nil {
		logger.Errorw("Failed to schedule jobs", "error", err)
		return
	}

	isLeader, err := pods.IsLeader(ctx)
	if err != nil || !isLeader {
		return
	}
	live, err := pods.ListPods(ctx)
	if err != nil {
		logger.Errorw("Failed to list pods", "error", err)
		return
	}
	if _, err := assigner.AssignJobs(ctx, live); err != nil {
		logger.Errorw("Failed to assign jobs", "error", err)
	}
}

// every calls fn immediately and then on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		fn()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
