/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/config"
)

const (
	serviceName = "dnastore.service"
	unitPath    = "/etc/systemd/system/" + serviceName
)

// serviceCmd represents the service command
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the dnastore API server as a systemd service",
	Long: `Manage the dnastore REST API server as a systemd service.

The unit runs "dnastore serve" against a configuration file, with
restart on failure and write access limited to the ledger and
configuration directories.`,
}

// installServiceCmd represents the service install command
var installServiceCmd = &cobra.Command{
	Use:   "install",
	Short: "Install dnastore as a systemd service",
	Long: `Install dnastore as a systemd service.

This will:
- Create or use existing configuration
- Generate systemd unit file
- Enable and optionally start the service

Examples:
  dnastore service install
  dnastore service install --data-dir /var/lib/dnastore --user dnastore`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		configPath, _ := cmd.Flags().GetString("config")
		user, _ := cmd.Flags().GetString("user")
		startNow, _ := cmd.Flags().GetBool("start")

		if os.Geteuid() != 0 {
			return fmt.Errorf("service install requires root privileges (run with: sudo dnastore service install)")
		}

		configPath, err := filepath.Abs(configPath)
		if err != nil {
			return err
		}

		cfg, err := ensureServiceConfig(cmd, configPath, dataDir)
		if err != nil {
			return err
		}

		binary, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate dnastore binary: %w", err)
		}

		unit := renderSystemdUnit(cfg, configPath, user, binary)
		if err := os.WriteFile(unitPath, []byte(unit), 0600); err != nil {
			return fmt.Errorf("failed to write unit file: %w", err)
		}

		if err := runSystemctlCommand("daemon-reload"); err != nil {
			return fmt.Errorf("failed to reload systemd: %w", err)
		}
		if err := runSystemctlCommand("enable", serviceName); err != nil {
			return fmt.Errorf("failed to enable service: %w", err)
		}
		cmd.Printf("✅ Service enabled\n")

		if startNow {
			if err := runSystemctlCommand("start", serviceName); err != nil {
				return fmt.Errorf("failed to start service: %w", err)
			}
			cmd.Printf("✅ Service started\n")
		}

		cmd.Printf("\nService: %s\n", serviceName)
		cmd.Printf("Config: %s\n", configPath)
		cmd.Printf("Ledger: %s\n", cfg.Ledger.Path)
		cmd.Printf("Listening on: %s:%d\n", cfg.Server.Bind, cfg.Server.Port)
		if !startNow {
			cmd.Printf("\nTo start the service: sudo systemctl start %s\n", serviceName)
		}
		cmd.Printf("To view logs: sudo journalctl -u %s -f\n", serviceName)
		return nil
	},
}

// systemctlCmd builds a service subcommand that forwards to systemctl
func systemctlCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSystemctlCommand(action, serviceName); err != nil {
				return fmt.Errorf("systemctl %s failed: %w", action, err)
			}
			return nil
		},
	}
}

// logsCmd represents the service logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show dnastore service logs",
	Long: `Show dnastore service logs using journalctl.

Examples:
  dnastore service logs
  dnastore service logs -f  # Follow logs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		lines, _ := cmd.Flags().GetInt("lines")
		return runCommand("journalctl", journalArgs(follow, lines)...)
	},
}

// uninstallCmd represents the service uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the dnastore service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			return fmt.Errorf("service uninstall requires root privileges (run with: sudo dnastore service uninstall)")
		}

		_ = runSystemctlCommand("stop", serviceName) // already stopped is fine
		if err := runSystemctlCommand("disable", serviceName); err != nil {
			cmd.Printf("Warning: could not disable service: %v\n", err)
		}

		if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove unit file: %w", err)
		}
		if err := runSystemctlCommand("daemon-reload"); err != nil {
			return fmt.Errorf("failed to reload systemd: %w", err)
		}

		cmd.Printf("✅ dnastore service uninstalled\n")
		cmd.Printf("Note: configuration and run ledger were not removed\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)

	serviceCmd.AddCommand(installServiceCmd)
	serviceCmd.AddCommand(systemctlCmd("start", "Start the dnastore service"))
	serviceCmd.AddCommand(systemctlCmd("stop", "Stop the dnastore service"))
	serviceCmd.AddCommand(systemctlCmd("restart", "Restart the dnastore service"))
	serviceCmd.AddCommand(systemctlCmd("status", "Show dnastore service status"))
	serviceCmd.AddCommand(logsCmd)
	serviceCmd.AddCommand(uninstallCmd)

	installServiceCmd.Flags().String("data-dir", "/var/lib/dnastore", "Data directory for the run ledger")
	installServiceCmd.Flags().String("user", "dnastore", "User to run the service as")
	installServiceCmd.Flags().Bool("start", true, "Start the service after installation")

	logsCmd.Flags().BoolP("follow", "f", false, "Follow log output")
	logsCmd.Flags().IntP("lines", "n", 0, "Number of lines to show")
}

// ensureServiceConfig loads the configuration at configPath, creating one
// with a fresh API key when it does not exist yet
func ensureServiceConfig(cmd *cobra.Command, configPath, dataDir string) (*config.Config, error) {
	if config.ConfigExists(configPath) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cmd.Printf("✅ Loaded existing configuration\n")
		return cfg, nil
	}

	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	cmd.Printf("✅ Created new configuration at %s\n", configPath)
	return cfg, nil
}

// renderSystemdUnit returns the unit file that runs binary as a server
func renderSystemdUnit(cfg *config.Config, configPath, user, binary string) string {
	writable := []string{filepath.Dir(configPath)}
	if cfg.Ledger.Enabled {
		writable = append(writable, cfg.Ledger.Path)
	}

	var paths strings.Builder
	for _, p := range writable {
		fmt.Fprintf(&paths, "ReadWritePaths=%s\n", p)
	}

	return fmt.Sprintf(`[Unit]
Description=dnastore DNA storage codec API
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=%s serve --config %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
%s
[Install]
WantedBy=multi-user.target
`, user, user, binary, configPath, paths.String())
}

func journalArgs(follow bool, lines int) []string {
	args := []string{"-u", serviceName}
	if follow {
		args = append(args, "-f")
	}
	if lines > 0 {
		args = append(args, fmt.Sprintf("-n%d", lines))
	}
	return args
}

// runSystemctlCommand runs a systemctl command
func runSystemctlCommand(args ...string) error {
	return runCommand("systemctl", args...)
}

// runCommand runs a system command and returns its error
func runCommand(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
