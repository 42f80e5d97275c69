package scheduler

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yashkumarverma/cronx/src/command"
	"github.com/yashkumarverma/cronx/src/cron"
	"gopkg.in/yaml.v3"
)

// ScheduleFetcher interface defines methods for retrieving command schedules
type ScheduleFetcher interface {
	// FetchSchedule retrieves the schedule entry with the given name
	FetchSchedule(name string) (CommandSchedule, error)
	// Schedules returns every entry, ordered by name
	Schedules() []CommandSchedule
}

// CommandSchedule binds a command and its parameters to a cron expression.
type CommandSchedule struct {
	Name           string   `yaml:"name"`
	CommandID      string   `yaml:"command"`
	CronExpression string   `yaml:"cron"`
	Parameters     []string `yaml:"params"`
}

// scheduleFile is the YAML layout accepted by LoadFile.
type scheduleFile struct {
	Schedules []CommandSchedule `yaml:"schedules"`
}

// LocalScheduleFetcher implements ScheduleFetcher using local storage
type LocalScheduleFetcher struct {
	registry  *command.CommandRegistry
	schedules map[string]CommandSchedule
}

// NewLocalScheduleFetcher creates a fetcher holding one entry per
// registered command plus the predefined maintenance schedules.
func NewLocalScheduleFetcher(registry *command.CommandRegistry) (*LocalScheduleFetcher, error) {
	fetcher := &LocalScheduleFetcher{
		registry:  registry,
		schedules: make(map[string]CommandSchedule),
	}

	for id, cmd := range registry.GetCommands() {
		expression, params, err := cmd.Schedule()
		if err != nil {
			return nil, fmt.Errorf("failed to get schedule for command %s: %w", id, err)
		}
		if err := fetcher.add(CommandSchedule{Name: id, CommandID: id, CronExpression: expression, Parameters: params}); err != nil {
			return nil, err
		}
	}

	if _, ok := registry.GetCommand("shell"); ok {
		for _, entry := range predefinedSchedules {
			if err := fetcher.add(entry); err != nil {
				return nil, err
			}
		}
	}

	return fetcher, nil
}

// predefinedSchedules run through the shell command.
var predefinedSchedules = []CommandSchedule{
	{Name: "hourly_check", CommandID: "shell", CronExpression: "0 * * * *", Parameters: []string{"echo Hourly system check"}},
	{Name: "daily_backup", CommandID: "shell", CronExpression: "0 0 * * *", Parameters: []string{"echo Daily backup check"}},
	{Name: "weekly_report", CommandID: "shell", CronExpression: "0 0 * * 0", Parameters: []string{"echo Weekly report generation"}},
	{Name: "monthly_cleanup", CommandID: "shell", CronExpression: "0 0 1 * *", Parameters: []string{"echo Monthly cleanup"}},
	{Name: "business_hours", CommandID: "shell", CronExpression: "0 9,10,11,12,13,14,15,16,17 * * 1,2,3,4,5", Parameters: []string{"echo Business hours check"}},
	{Name: "quarterly", CommandID: "shell", CronExpression: "0 0 1 1,4,7,10 *", Parameters: []string{"echo Quarterly maintenance"}},
	{Name: "multiple_daily", CommandID: "shell", CronExpression: "0 8,12,18 * * *", Parameters: []string{"echo Multiple daily check"}},
	{Name: "bi_hourly", CommandID: "shell", CronExpression: "0 0,2,4,6,8,10,12,14,16,18,20,22 * * *", Parameters: []string{"echo Bi-hourly check"}},
}

// LoadFile reads a YAML schedule file and merges its entries, replacing
// entries with the same name.
func (f *LocalScheduleFetcher) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schedules %s: %w", path, err)
	}
	return f.Load(data)
}

// Load merges schedule entries from YAML bytes. Nothing is merged unless
// every entry is valid.
func (f *LocalScheduleFetcher) Load(data []byte) error {
	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse schedules: %w", err)
	}

	var errs []string
	seen := make(map[string]bool)
	for i, entry := range file.Schedules {
		if err := f.validate(entry); err != nil {
			errs = append(errs, fmt.Sprintf("schedules[%d]: %v", i, err))
			continue
		}
		if seen[entry.Name] {
			errs = append(errs, fmt.Sprintf("schedules[%d]: duplicate name %q", i, entry.Name))
		}
		seen[entry.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid schedules: %s", strings.Join(errs, "; "))
	}

	for _, entry := range file.Schedules {
		f.schedules[entry.Name] = entry
	}
	return nil
}

func (f *LocalScheduleFetcher) add(entry CommandSchedule) error {
	if err := f.validate(entry); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", entry.Name, err)
	}
	f.schedules[entry.Name] = entry
	return nil
}

func (f *LocalScheduleFetcher) validate(entry CommandSchedule) error {
	if entry.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, ok := f.registry.GetCommand(entry.CommandID); !ok {
		return fmt.Errorf("unknown command %q", entry.CommandID)
	}
	return ValidateCronExpression(entry.CronExpression)
}

// FetchSchedule retrieves the schedule entry from local storage
func (f *LocalScheduleFetcher) FetchSchedule(name string) (CommandSchedule, error) {
	schedule, exists := f.schedules[name]
	if !exists {
		return CommandSchedule{}, fmt.Errorf("no schedule found for: %s", name)
	}
	return schedule, nil
}

// Schedules returns all entries ordered by name.
func (f *LocalScheduleFetcher) Schedules() []CommandSchedule {
	out := make([]CommandSchedule, 0, len(f.schedules))
	for _, entry := range f.schedules {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateCronExpression validates if the given string is a valid cron expression
func ValidateCronExpression(expr string) error {
	if _, err := cron.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
