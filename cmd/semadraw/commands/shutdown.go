package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/semadraw/semadraw/internal/cli/prompt"
)

var (
	shutdownPidFile string
	shutdownForce   bool
	shutdownYes     bool
)

// errProcessDone is returned by stopProcess when the process has already exited.
var errProcessDone = errors.New("process already done")

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop a running SemaDraw daemon",
	Long: `Stop a running SemaDraw daemon.

By default, sends a graceful shutdown signal (SIGTERM). Use --force for
immediate termination (SIGKILL).

Examples:
  # Stop the daemon (uses default PID file)
  semadraw shutdown

  # Stop using a custom PID file
  semadraw shutdown --pid-file /var/run/semadraw.pid

  # Force stop without confirmation
  semadraw shutdown --force --yes`,
	RunE: runShutdown,
}

func init() {
	shutdownCmd.Flags().StringVar(&shutdownPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/semadraw/semadraw.pid)")
	shutdownCmd.Flags().BoolVarP(&shutdownForce, "force", "f", false, "Force kill (SIGKILL) instead of graceful shutdown")
	shutdownCmd.Flags().BoolVarP(&shutdownYes, "yes", "y", false, "Skip confirmation prompt")
}

func runShutdown(cmd *cobra.Command, args []string) error {
	pidPath := shutdownPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pidData, err := os.ReadFile(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PID file not found: %s\n\nIs the daemon running?", pidPath)
		}
		return fmt.Errorf("read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return fmt.Errorf("invalid PID in file: %s", string(pidData))
	}

	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Stop daemon (pid %d)?", pid), shutdownYes)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		return err
	}
	if !ok {
		fmt.Println("aborted")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}

	if err := stopProcess(process, pid, shutdownForce); err != nil {
		if errors.Is(err, errProcessDone) {
			fmt.Println("daemon already stopped")
			_ = os.Remove(pidPath)
			return nil
		}
		return err
	}

	if shutdownForce {
		fmt.Println("daemon terminated")
	} else {
		fmt.Println("shutdown signal sent, daemon will stop gracefully")
	}
	return nil
}

// stopProcess sends the appropriate signal to stop the daemon process.
func stopProcess(process *os.Process, pid int, force bool) error {
	sig, name := syscall.SIGTERM, "SIGTERM"
	if force {
		sig, name = syscall.SIGKILL, "SIGKILL"
	}

	fmt.Printf("sending %s to process %d...\n", name, pid)

	err := process.Signal(sig)
	if err == os.ErrProcessDone {
		return errProcessDone
	}
	if err != nil {
		return fmt.Errorf("send signal: %w", err)
	}
	return nil
}
