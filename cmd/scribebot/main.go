package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/scribebot/internal/bus"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/daemon"
	"github.com/leonardotrapani/scribebot/internal/tui"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	envFile    string
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "scribebot",
	Short:        "Telegram bot that transcribes voice messages",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/scribebot/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the config")

	rootCmd.AddCommand(
		serveCmd(),
		statusCmd(),
		jobsCmd(),
		reloadCmd(),
		versionCmd(),
		stopCmd(),
		transcribeCmd(),
		historyCmd(),
		configureCmd(),
		modelCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemon.Run(cmd.Context(), daemon.RunOptions{
				ConfigPath: configPath,
				EnvFile:    envFile,
				Version:    version,
			})
		},
	}
}

// controlCmd sends a single-byte command to the running bot and prints the reply.
func controlCmd(use, short string, command byte, what string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(command)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", what, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return controlCmd("status", "Show whether the bot is running and how busy it is", bus.CmdStatus, "get status")
}

func jobsCmd() *cobra.Command {
	return controlCmd("jobs", "List the requests being transcribed", bus.CmdJobs, "list jobs")
}

func reloadCmd() *cobra.Command {
	return controlCmd("reload", "Re-read the config file", bus.CmdReload, "reload config")
}

func stopCmd() *cobra.Command {
	return controlCmd("stop", "Stop the bot after running requests finish", bus.CmdQuit, "stop bot")
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and bot versions",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scribebot %s (protocol %s)\n", version, bus.ProtoVer)
			if resp, err := bus.SendCommand(bus.CmdVersion); err == nil {
				fmt.Fprint(out, resp)
			}
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for scribebot.
This will guide you through setting up:
- The Telegram bot token and allowed chats
- Transcription provider, model and language
- Provider API keys
- History, Kafka events and the monitoring endpoint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(path)
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg = nil
	} else if err != nil {
		return err
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Println(tui.StyleError.Render(fmt.Sprintf("Configuration validation failed: %v", err)))
		return err
	}
	if err := config.Save(result.Config, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved to " + path))
	fmt.Println()
	if _, err := bus.SendCommand(bus.CmdReload); err == nil {
		fmt.Println("The running bot reloaded the new settings.")
	} else {
		fmt.Println("Start the bot with: scribebot serve")
	}
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// loadConfig reads and validates the config for the one-shot commands.
func loadConfig() (*config.Config, error) {
	if err := daemon.LoadEnv(envFile); err != nil {
		return nil, err
	}
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
