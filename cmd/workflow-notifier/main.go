package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"workflow/internal/config"
	"workflow/internal/constants"
	"workflow/internal/editorial"
	"workflow/internal/logger"
	"workflow/internal/workflow"
	"workflow/pkg/bootstrap"
	"workflow/pkg/logging"
	"workflow/pkg/models"
)

const serviceName = "workflow-notifier"

var (
	configFile string
)

// @title        Workflow Notifier API
// @version      1.0
// @description  Diagnostics and rule listing for editorial workflow notifications.
// @BasePath     /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Editorial workflow notification service",
		Long:  "Matches editorial events against notification rules and delivers messages to the affected users",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(publishEventCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consume editorial events and dispatch notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting workflow notifier")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			log.InfowCtx(ctx, "Service running")
			runErr := app.Run(ctx)

			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancelShutdown()
			if err := app.Shutdown(shutdownCtx); err != nil {
				log.ErrorwCtx(shutdownCtx, "Shutdown failed", "error", err)
			}

			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				log.ErrorwCtx(ctx, "Service stopped with error", "error", runErr)
				return runErr
			}
			log.InfowCtx(ctx, "Service shutdown complete")
			return nil
		},
	}
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the notification rules the current config registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			reg := workflow.NewRegistry()
			if _, err := editorial.Setup(cfg.Notifications, reg, log); err != nil {
				log.Warnw("Some rules were skipped", "error", err)
			}

			rules := reg.Rules()
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notification rules enabled")
				return nil
			}

			rows := make([][]string, 0, len(rules))
			for _, rule := range rules {
				info := workflow.Describe(rule)
				event := info.Event
				if info.Conditional {
					event += " (if)"
				}
				rows = append(rows, []string{
					info.Name,
					event,
					info.Text,
					strings.Join(info.Recipients, ", "),
					strings.Join(info.Channels, ", "),
					fmt.Sprintf("%d", len(info.Links)),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Rule", "Event", "Text", "Recipients", "Channels", "Links"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func publishEventCmd() *cobra.Command {
	var (
		eventID  string
		source   string
		payload  string
		argsJSON string
	)

	cmd := &cobra.Command{
		Use:   "publish-event <name>",
		Short: "Publish an editorial event to the event topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := buildEvent(args[0], eventID, source, payload, argsJSON)
			if err != nil {
				return err
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			base := bootstrap.NewBase(cfg, log)
			if err := base.InitProducer(); err != nil {
				return err
			}
			defer base.ShutdownBroker()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			topic := cfg.Broker.Kafka.EventTopic
			if err := base.Producer.Publish(ctx, topic, eventKey(ev), ev); err != nil {
				return fmt.Errorf("failed to publish event: %w", err)
			}

			log.InfowCtx(ctx, "Event published", "event", ev.Name, "event_id", ev.ID, "topic", topic)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "id", "", "Event id (generated when empty)")
	cmd.Flags().StringVar(&source, "source", "cli", "Event source")
	cmd.Flags().StringVar(&payload, "payload", "", `Payload as a JSON object, e.g. {"post_id": 7}`)
	cmd.Flags().StringVar(&argsJSON, "args", "", `Positional action arguments as a JSON array, e.g. [7, "assignees", 5]`)

	return cmd
}

func buildEvent(name, id, source, payloadJSON, argsJSON string) (models.Event, error) {
	b := models.NewEventBuilder(name).WithID(id).WithSource(source)

	if payloadJSON != "" {
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return models.Event{}, fmt.Errorf("invalid --payload: %w", err)
		}
		b.WithPayload(payload)
	}

	if argsJSON != "" {
		var args []interface{}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return models.Event{}, fmt.Errorf("invalid --args: %w", err)
		}
		b.WithArgs(args...)
	}

	ev := b.Build()
	if err := models.ValidateEvent(&ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// eventKey partitions by post so events for one post stay ordered.
func eventKey(ev models.Event) string {
	if id := workflow.UserID(ev.Payload["post_id"]); id != "" {
		return id
	}
	if len(ev.Args) > 0 {
		if id := workflow.UserID(ev.Args[0]); id != "" {
			return id
		}
	}
	return ev.ID
}
