package utils

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// CommandExecutor handles safe execution of external tools
type CommandExecutor struct {
}

// NewCommandExecutor creates a new command executor instance
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// ExecuteCommand safely executes a shell command line
func (ce *CommandExecutor) ExecuteCommand(ctx context.Context, command string) error {
	if command == "" {
		return fmt.Errorf("empty command provided")
	}

	// Security checks
	if err := ce.validateCommand(command); err != nil {
		return fmt.Errorf("command validation failed: %v", err)
	}

	// Platform-specific execution
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		// Unix-like systems
		cmd = exec.CommandContext(ctx, "bash", "-c", command)
	}

	// Set up pipes for real-time output
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("command execution failed: %v", err)
	}

	return nil
}

// ExecuteArgs runs a program with explicit arguments, bypassing the shell.
// Output streams to the console in real time.
func (ce *CommandExecutor) ExecuteArgs(ctx context.Context, name string, args ...string) error {
	if name == "" {
		return fmt.Errorf("empty program name provided")
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("command execution failed: %v", err)
	}

	return nil
}

// validateCommand performs security checks on the proposed command
func (ce *CommandExecutor) validateCommand(command string) error {
	// List of dangerous commands/patterns to reject
	dangerousPatterns := []string{
		"rm -rf /",
		":(){ :|:& };:", // Fork bomb
		"> /dev/sda",    // Disk overwrite
		"wipefs",
		"fdisk",
		"mkfs",
		"dd if=",
	}

	cmdLower := strings.ToLower(command)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(cmdLower, strings.ToLower(pattern)) {
			return fmt.Errorf("potentially dangerous command detected: %s", pattern)
		}
	}

	return nil
}
