package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command interface defines the methods that all commands must implement
type Command interface {
	// ID returns the unique identifier for the command
	ID() string
	// Description returns a human-readable description of the command
	Description() string
	// Execute runs the command with the given parameters
	Execute(ctx context.Context, params []string) error
	// Schedule returns the cron schedule and parameters for the command
	Schedule() (string, []string, error)
	// Parameters returns the default parameters for the command
	Parameters() []string
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry returns a registry holding the built-in commands.
func NewCommandRegistry() *CommandRegistry {
	registry := NewEmptyRegistry()
	registry.registerCommands()
	return registry
}

// NewEmptyRegistry returns a registry with no commands.
func NewEmptyRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
	}
}

// registerCommands registers all available commands
func (r *CommandRegistry) registerCommands() {
	r.Register(NewEchoCommand("Heartbeat check"))
	r.Register(NewShellCommand("df -h"))
	r.Register(NewListFilesCommand("."))
	r.Register(NewDiskUsageCommand("/"))
	r.Register(NewPingCommand("localhost", 4, 1.0))
}

// Register adds cmd, replacing any command with the same ID.
func (r *CommandRegistry) Register(cmd Command) {
	r.commands[cmd.ID()] = cmd
}

// GetCommand returns a command by its ID
func (r *CommandRegistry) GetCommand(id string) (Command, bool) {
	cmd, exists := r.commands[id]
	return cmd, exists
}

// GetCommandDescriptions used to log which commands are supported
func (r *CommandRegistry) GetCommandDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for id, cmd := range r.commands {
		descriptions[id] = cmd.Description()
	}
	return descriptions
}

// GetCommands returns all registered commands
func (r *CommandRegistry) GetCommands() map[string]Command {
	return r.commands
}

// output is where command results are written.
var output io.Writer = os.Stdout

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", name, err, string(out))
	}
	_, err = output.Write(out)
	return err
}

// EchoCommand implements a simple echo command
type EchoCommand struct {
	message string
}

// NewEchoCommand creates a new EchoCommand
func NewEchoCommand(message string) *EchoCommand {
	return &EchoCommand{
		message: message,
	}
}

// ID returns the command identifier
func (c *EchoCommand) ID() string {
	return "echo"
}

// Description returns the command description
func (c *EchoCommand) Description() string {
	return "Echo a message to stdout"
}

// Execute runs the echo command
func (c *EchoCommand) Execute(_ context.Context, params []string) error {
	msg := c.message
	if len(params) > 0 {
		msg = strings.Join(params, " ")
	}
	_, err := fmt.Fprintln(output, msg)
	return err
}

// Schedule returns the cron schedule and parameters for the command
func (c *EchoCommand) Schedule() (string, []string, error) {
	return "* * * * *", c.Parameters(), nil // Every minute
}

// Parameters returns the default parameters for the command
func (c *EchoCommand) Parameters() []string {
	return []string{c.message}
}

// ShellCommand implements a shell command execution
type ShellCommand struct {
	command string
}

// NewShellCommand creates a new ShellCommand
func NewShellCommand(command string) *ShellCommand {
	return &ShellCommand{
		command: command,
	}
}

// ID returns the command identifier
func (c *ShellCommand) ID() string {
	return "shell"
}

// Description returns the command description
func (c *ShellCommand) Description() string {
	return "Execute a shell command"
}

// Execute runs the shell command
func (c *ShellCommand) Execute(ctx context.Context, params []string) error {
	script := c.command
	if len(params) > 0 {
		script = strings.Join(params, " ")
	}
	if script == "" {
		return fmt.Errorf("shell: no command given")
	}
	return run(ctx, "sh", "-c", script)
}

// Schedule returns the cron schedule and parameters for the command
func (c *ShellCommand) Schedule() (string, []string, error) {
	return "0,30 * * * *", c.Parameters(), nil // Every 30 minutes
}

// Parameters returns the default parameters for the command
func (c *ShellCommand) Parameters() []string {
	return []string{c.command}
}

// ListFilesCommand implements a directory listing command
type ListFilesCommand struct {
	directory string
}

// NewListFilesCommand creates a new ListFilesCommand
func NewListFilesCommand(directory string) *ListFilesCommand {
	return &ListFilesCommand{
		directory: directory,
	}
}

// ID returns the command identifier
func (c *ListFilesCommand) ID() string {
	return "ls"
}

// Description returns the command description
func (c *ListFilesCommand) Description() string {
	return "List files in a directory"
}

// Execute lists files in the specified directory
func (c *ListFilesCommand) Execute(ctx context.Context, params []string) error {
	dir := c.directory
	if len(params) > 0 {
		dir = params[0]
	}
	return run(ctx, "ls", "-la", dir)
}

// Schedule returns the cron schedule and parameters for the command
func (c *ListFilesCommand) Schedule() (string, []string, error) {
	return "0 * * * *", c.Parameters(), nil // Top of every hour
}

// Parameters returns the default parameters for the command
func (c *ListFilesCommand) Parameters() []string {
	return []string{c.directory}
}

// DiskUsageCommand implements a disk usage command
type DiskUsageCommand struct {
	path string
}

// NewDiskUsageCommand creates a new DiskUsageCommand
func NewDiskUsageCommand(path string) *DiskUsageCommand {
	return &DiskUsageCommand{
		path: path,
	}
}

// ID returns the command identifier
func (c *DiskUsageCommand) ID() string {
	return "du"
}

// Description returns the command description
func (c *DiskUsageCommand) Description() string {
	return "Show disk usage for a path"
}

// Execute shows disk usage for the specified path
func (c *DiskUsageCommand) Execute(ctx context.Context, params []string) error {
	path := c.path
	if len(params) > 0 {
		path = params[0]
	}
	return run(ctx, "du", "-sh", path)
}

// Schedule returns the cron schedule and parameters for the command
func (c *DiskUsageCommand) Schedule() (string, []string, error) {
	return "0 3 * * *", c.Parameters(), nil // Daily at 03:00
}

// Parameters returns the default parameters for the command
func (c *DiskUsageCommand) Parameters() []string {
	return []string{c.path}
}

// PingCommand implements a network ping command
type PingCommand struct {
	host     string
	count    int
	interval float64
}

// NewPingCommand creates a new PingCommand
func NewPingCommand(host string, count int, interval float64) *PingCommand {
	return &PingCommand{
		host:     host,
		count:    count,
		interval: interval,
	}
}

// ID returns the command identifier
func (c *PingCommand) ID() string {
	return "ping"
}

// Description returns the command description
func (c *PingCommand) Description() string {
	return "Ping a host with specified count and interval"
}

// Execute runs the ping command
func (c *PingCommand) Execute(ctx context.Context, params []string) error {
	host := c.host
	if len(params) > 0 {
		host = params[0]
	}

	args := []string{
		"-c", fmt.Sprintf("%d", c.count),
		"-i", fmt.Sprintf("%f", c.interval),
		host,
	}
	return run(ctx, "ping", args...)
}

// Schedule returns the cron schedule and parameters for the command
func (c *PingCommand) Schedule() (string, []string, error) {
	return "0,10,20,30,40,50 * * * *", c.Parameters(), nil // Every 10 minutes
}

// Parameters returns the default parameters for the command
func (c *PingCommand) Parameters() []string {
	return []string{c.host}
}
