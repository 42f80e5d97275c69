package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashkumarverma/cronx/src/command"
	"github.com/yashkumarverma/cronx/src/utils"
	"github.com/yashkumarverma/cronx/src/utils/cache"
	"github.com/yashkumarverma/cronx/src/utils/cache/cachetest"
)

func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

type fakeLeader struct {
	leader bool
	err    error
}

func (f *fakeLeader) IsLeader(context.Context) (bool, error) { return f.leader, f.err }

// recordingCommand records its executions instead of spawning a process.
type recordingCommand struct {
	id    string
	calls [][]string
	err   error
}

func (c *recordingCommand) ID() string          { return c.id }
func (c *recordingCommand) Description() string { return "records calls" }
func (c *recordingCommand) Execute(_ context.Context, params []string) error {
	c.calls = append(c.calls, params)
	return c.err
}
func (c *recordingCommand) Schedule() (string, []string, error) { return "* * * * *", nil, nil }
func (c *recordingCommand) Parameters() []string                { return nil }

type fixture struct {
	scheduler *Scheduler
	client    *cache.Client
	leader    *fakeLeader
	clock     time.Time
}

func newFixture(t *testing.T, schedules string, cmds ...command.Command) *fixture {
	t.Helper()
	client, _ := cachetest.New(t)

	registry := command.NewEmptyRegistry()
	for _, cmd := range cmds {
		registry.Register(cmd)
	}
	fetcher, err := NewLocalScheduleFetcher(registry)
	require.NoError(t, err)
	require.NoError(t, fetcher.Load([]byte(schedules)))
	// only the YAML entries are planned in these tests
	for id := range registry.GetCommands() {
		delete(fetcher.schedules, id)
	}

	f := &fixture{
		client: client,
		leader: &fakeLeader{leader: true},
		clock:  time.Date(2026, 2, 18, 10, 30, 30, 0, time.UTC),
	}
	config := &utils.Config{SchedulingWindow: 5 * time.Minute, JobTTL: time.Hour, NextJobCount: 100}
	f.scheduler = NewScheduler(client, utils.NopLogger(), config, fetcher, f.leader)
	f.scheduler.now = func() time.Time { return f.clock }
	for _, cmd := range cmds {
		f.scheduler.RegisterCommand(cmd)
	}
	return f
}

func (f *fixture) assign(t *testing.T, podID string) {
	t.Helper()
	ctx := context.Background()
	jobs, err := f.scheduler.Upcoming(ctx, 100)
	require.NoError(t, err)
	for _, job := range jobs {
		job.AssignedTo = podID
		job.Status = command.Assigned
		require.NoError(t, job.UpdateInRedis(ctx, f.client.GetClient(), time.Hour))
	}
}

const everyMinute = `
schedules:
  - name: tick
    command: rec
    cron: "* * * * *"
    params: ["a"]
`

func TestScheduleJobsPlansWindow(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	ctx := context.Background()

	n, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	jobs, err := f.scheduler.Upcoming(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 5)
	for i, job := range jobs {
		want := time.Date(2026, 2, 18, 10, 31+i, 0, 0, time.UTC)
		assert.True(t, want.Equal(job.ScheduledAt), "job %d at %s", i, job.ScheduledAt)
		assert.Equal(t, fmt.Sprintf("tick_%d", want.Unix()), job.ID)
		assert.Equal(t, "tick", job.Schedule)
		assert.Equal(t, "rec", job.CommandID)
		assert.Equal(t, []string{"a"}, job.Params)
		assert.Equal(t, command.Scheduled, job.Status)
	}
}

func TestScheduleJobsContinuesFromCursor(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	ctx := context.Background()

	_, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)

	n, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = f.clock.Add(2 * time.Minute)
	n, err = f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cursor, ok, err := f.client.Get(ctx, fmt.Sprintf(CursorKey, "tick"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-02-18T10:37:00Z", cursor)
}

func TestScheduleJobsKeepsExistingJobs(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	ctx := context.Background()

	_, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	f.assign(t, "pod-a")

	require.NoError(t, f.client.GetClient().Del(ctx, fmt.Sprintf(CursorKey, "tick")).Err())
	n, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	jobs, err := f.scheduler.Upcoming(ctx, 10)
	require.NoError(t, err)
	for _, job := range jobs {
		assert.Equal(t, command.Assigned, job.Status)
	}
}

func TestScheduleJobsFollowerSkips(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	f.leader.leader = false

	n, err := f.scheduler.ScheduleJobs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.leader.err = errors.New("redis down")
	_, err = f.scheduler.ScheduleJobs(context.Background())
	assert.ErrorContains(t, err, "redis down")
}

func TestScheduleJobsSkipsUnsatisfiable(t *testing.T) {
	f := newFixture(t, `
schedules:
  - name: never
    command: rec
    cron: "0 0 31 2 *"
  - name: hourly
    command: rec
    cron: "0 * * * *"
`, &recordingCommand{id: "rec"})
	f.scheduler.config.SchedulingWindow = 2 * time.Hour

	n, err := f.scheduler.ScheduleJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunDueJobs(t *testing.T) {
	ok := &recordingCommand{id: "rec"}
	bad := &recordingCommand{id: "bad", err: errors.New("exit 1")}
	f := newFixture(t, `
schedules:
  - name: good
    command: rec
    cron: "31 * * * *"
    params: ["x"]
  - name: broken
    command: bad
    cron: "31 * * * *"
  - name: later
    command: rec
    cron: "33 * * * *"
`, ok, bad)
	ctx := context.Background()

	_, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	f.assign(t, "pod-a")

	ran, err := f.scheduler.RunDueJobs(ctx, "pod-a")
	require.NoError(t, err)
	assert.Zero(t, ran, "nothing is due before 10:31")

	f.clock = time.Date(2026, 2, 18, 10, 31, 5, 0, time.UTC)
	ran, err = f.scheduler.RunDueJobs(ctx, "pod-b")
	require.NoError(t, err)
	assert.Zero(t, ran, "jobs belong to another pod")

	ran, err = f.scheduler.RunDueJobs(ctx, "pod-a")
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.Equal(t, [][]string{{"x"}}, ok.calls)
	assert.Len(t, bad.calls, 1)

	at := time.Date(2026, 2, 18, 10, 31, 0, 0, time.UTC).Unix()
	good, err := command.LoadJob(ctx, f.client.GetClient(), fmt.Sprintf("good_%d", at))
	require.NoError(t, err)
	assert.Equal(t, command.Success, good.Status)
	require.NotNil(t, good.StartedAt)

	broken, err := command.LoadJob(ctx, f.client.GetClient(), fmt.Sprintf("broken_%d", at))
	require.NoError(t, err)
	assert.Equal(t, command.Failed, broken.Status)
	assert.Equal(t, "exit 1", broken.Error)

	upcoming, err := f.scheduler.Upcoming(ctx, 10)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "later", upcoming[0].Schedule)
}

func TestRunDueJobsDropsExpiredDetails(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	ctx := context.Background()

	_, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	id := fmt.Sprintf("tick_%d", time.Date(2026, 2, 18, 10, 31, 0, 0, time.UTC).Unix())
	require.NoError(t, f.client.GetClient().Del(ctx, fmt.Sprintf(command.JobDetailsKey, id)).Err())

	f.clock = f.clock.Add(time.Minute)
	ran, err := f.scheduler.RunDueJobs(ctx, "pod-a")
	require.NoError(t, err)
	assert.Zero(t, ran)

	members, err := f.client.GetClient().ZRange(ctx, command.JobsSortedSetKey, 0, -1).Result()
	require.NoError(t, err)
	assert.NotContains(t, members, id)
	assert.Len(t, members, 4)
}

func TestRunDueJobsUnknownCommand(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	ctx := context.Background()
	f.scheduler.commands = map[string]command.Command{}

	_, err := f.scheduler.ScheduleJobs(ctx)
	require.NoError(t, err)
	f.assign(t, "pod-a")

	f.clock = f.clock.Add(time.Minute)
	ran, err := f.scheduler.RunDueJobs(ctx, "pod-a")
	require.NoError(t, err)
	assert.Equal(t, 1, ran)

	id := fmt.Sprintf("tick_%d", time.Date(2026, 2, 18, 10, 31, 0, 0, time.UTC).Unix())
	job, err := command.LoadJob(ctx, f.client.GetClient(), id)
	require.NoError(t, err)
	assert.Equal(t, command.Failed, job.Status)
	assert.Contains(t, job.Error, "unknown command")
}

func TestUpcomingNonPositive(t *testing.T) {
	f := newFixture(t, everyMinute, &recordingCommand{id: "rec"})
	jobs, err := f.scheduler.Upcoming(context.Background(), 0)
	assert.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParserCaches(t *testing.T) {
	p := NewParser()
	a, err := p.Parse("0 12 * * *")
	require.NoError(t, err)
	b, err := p.Parse("0 12 * * *")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, p.Len())

	_, err = p.Parse("0 24 * * *")
	assert.Error(t, err)
	assert.Equal(t, 1, p.Len())
}

func TestScheduleJobsWithBuiltins(t *testing.T) {
	client, _ := cachetest.New(t)
	registry := command.NewCommandRegistry()
	fetcher, err := NewLocalScheduleFetcher(registry)
	require.NoError(t, err)

	config := &utils.Config{SchedulingWindow: time.Hour, JobTTL: time.Hour}
	s := NewScheduler(client, utils.NopLogger(), config, fetcher, &fakeLeader{leader: true})
	s.now = func() time.Time { return time.Date(2026, 2, 18, 10, 30, 30, 0, time.UTC) }

	n, err := s.ScheduleJobs(context.Background())
	require.NoError(t, err)
	// echo 60, shell 2, ping 6, ls 1, hourly_check 1, business_hours 1
	assert.Equal(t, 71, n)

	jobs, err := s.Upcoming(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "2026-02-18T10:31:00Z", jobs[0].ScheduledAt.Format(time.RFC3339))
}
