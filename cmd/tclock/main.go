package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tclock-go/internal/app"
	"tclock-go/internal/config"
	"tclock-go/internal/encryption"
	"tclock-go/internal/tclock"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "tclock",
	Short: "Offline-resilient time clock agent",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		kioskID := uuid.New().String()
		cfg := config.NewConfig(kioskID, defaults["base_dir"])

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Remote service username: ")
		username, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		cfg.Soap.Username = strings.TrimSpace(username)

		fmt.Print("Remote service password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		cfg.Soap.Password = string(password)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		// Generate the age key pair used for photo backups at rest.
		encryptor := encryption.NewAgeEncryptor(cfg.Encryption)
		if err := encryptor.Setup(); err != nil {
			return fmt.Errorf("failed to set up photo encryption keys: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Kiosk ID: %s\n", kioskID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Kiosk ID:  %s\n", cfg.KioskID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Endpoint:  %s\n", cfg.Soap.Endpoint)
		fmt.Printf("Storage:   %s\n", cfg.Storage.Type)
		fmt.Printf("Retention: %d days\n", cfg.Storage.RetentionDays)
		return nil
	},
}

// punch command

var (
	punchDepartment int
	punchPhoto      string
)

var punchCmd = &cobra.Command{
	Use:   "punch <employee-id>",
	Short: "Record a punch for an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Punch(cmd.Context(), args[0], punchDepartment, punchPhoto)
		if err != nil {
			return err
		}

		switch result.Status {
		case tclock.StatusAccepted:
			fmt.Printf("Punch recorded: %s %s %s", result.PunchType, result.FirstName, result.LastName)
			if result.WeeklyHours != nil {
				fmt.Printf(" (%.2f hours this week)", *result.WeeklyHours)
			}
			fmt.Println()
		case tclock.StatusStoredOffline:
			fmt.Println("Service unreachable - punch stored offline and will sync automatically")
		case tclock.StatusRejected:
			fmt.Printf("%s / %s\n", result.Message.English, result.Message.Spanish)
		case tclock.StatusSystemError:
			fmt.Printf("System error %d: %s\n", result.SystemErrorCode, result.SystemMessage)
		}
		return nil
	},
}

// sync command

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued offline punches",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		stats := a.Sync(cmd.Context())
		if stats.Err != "" {
			fmt.Printf("Sync skipped: %s\n", stats.Err)
			return nil
		}
		fmt.Printf("Sync complete: %d total, %d synced, %d failed\n",
			stats.Total, stats.Synced, stats.Failed)
		return nil
	},
}

// status command

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and queue status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// The app starts offline until a probe succeeds; probe now so
		// status reflects reality, not just process history.
		a.Reconnect(cmd.Context())

		status, err := a.GetStatus()
		if err != nil {
			return err
		}

		if status.Online {
			fmt.Println("Connection: online")
		} else {
			fmt.Printf("Connection: offline (%s)\n", status.LastError)
		}
		fmt.Printf("Queue: %d records, %d waiting to sync\n", status.Total, status.Unsynced)
		return nil
	},
}

// queue command

var queueListAll bool

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the offline punch queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued punches",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.QueueRecords(!queueListAll)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("Queue is empty")
			return nil
		}

		for _, rec := range records {
			state := "unsynced"
			if rec.Synced {
				state = "synced"
			}
			fmt.Printf("%4d  %-12s  %s  %s\n",
				rec.ID, rec.EmployeeID, rec.PunchTime.Format("2006-01-02 15:04:05"), state)
		}
		return nil
	},
}

// cleanup command

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete queue records past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Cleanup()
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d old records\n", count)
		return nil
	},
}

// run command

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the kiosk agent with background reconnect, sync, and cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	punchCmd.Flags().IntVar(&punchDepartment, "department", 0, "department override code")
	punchCmd.Flags().StringVar(&punchPhoto, "photo", "", "path to a JPEG punch photo")
	queueListCmd.Flags().BoolVar(&queueListAll, "all", false, "include synced records")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	queueCmd.AddCommand(queueListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(punchCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(runCmd)
}
