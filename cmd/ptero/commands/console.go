package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fivetwenty-io/ptero/internal/logging"
	"github.com/fivetwenty-io/ptero/pkg/console"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/fivetwenty-io/ptero/pkg/pteroclient"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewConsoleCommand creates the console command
func NewConsoleCommand() *cobra.Command {
	var (
		commands []string
		history  bool
		stats    bool
		natsURL  string
		subject  string
	)

	cmd := &cobra.Command{
		Use:   "console SERVER",
		Short: "Attach to a server console",
		Long: "Stream the console of a server over the Wings websocket until interrupted. " +
			"With --nats-url every event is published to a NATS subject instead of printed",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := args[0]

			err := ptero.ValidateServerIdentifier(identifier)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			servers := client.ClientAPI().Servers()

			creds, err := withRetry(ctx, func(ctx context.Context) (*ptero.WebSocketCredentials, error) {
				return servers.WebSocket(ctx, identifier)
			})
			if err != nil {
				return fmt.Errorf("failed to get websocket credentials: %w", err)
			}

			var opts []console.Option
			if viper.GetBool("verbose") {
				opts = append(opts, console.WithLogger(logging.New(logging.Options{
					Name:   "console",
					Level:  "debug",
					Output: cmd.ErrOrStderr(),
				})))
			}

			conn, err := console.Dial(ctx, creds, pteroclient.NormalizeURL(viper.GetString("url")), opts...)
			if err != nil {
				return fmt.Errorf("failed to connect to console: %w", err)
			}
			defer func() { _ = conn.Close() }()

			err = sendConsoleRequests(conn, history, stats, commands)
			if err != nil {
				return err
			}

			refresher := console.ServerRefresher(servers, identifier)

			if natsURL != "" {
				return relayConsole(ctx, conn, natsURL, subject, identifier, refresher)
			}

			err = conn.Stream(ctx, func(event console.Event) error {
				return printConsoleEvent(cmd, event, stats)
			}, refresher)
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("console stream ended: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&commands, "command", nil, "command to send after connecting (repeatable)")
	cmd.Flags().BoolVar(&history, "logs", true, "replay recent console output")
	cmd.Flags().BoolVar(&stats, "stats", false, "print resource usage events")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "publish events to this NATS server")
	cmd.Flags().StringVar(&subject, "subject", "", "NATS subject, ptero.console.SERVER by default")

	return cmd
}

func sendConsoleRequests(conn *console.Conn, history, stats bool, commands []string) error {
	if history {
		err := conn.RequestLogs()
		if err != nil {
			return err
		}
	}

	if stats {
		err := conn.RequestStats()
		if err != nil {
			return err
		}
	}

	for _, command := range commands {
		err := conn.SendCommand(command)
		if err != nil {
			return err
		}
	}

	return nil
}

func printConsoleEvent(cmd *cobra.Command, event console.Event, showStats bool) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch event.Event {
	case console.EventConsoleOutput, console.EventInstallOutput, console.EventTransferLogs:
		_, _ = fmt.Fprintln(out, event.Arg())
	case console.EventStatus:
		_, _ = fmt.Fprintf(errOut, "[status] %s\n", event.Arg())
	case console.EventDaemonMessage, console.EventDaemonError:
		_, _ = fmt.Fprintf(errOut, "[daemon] %s\n", event.Arg())
	case console.EventStats:
		if !showStats {
			return nil
		}

		stats, err := event.Stats()
		if err != nil {
			return nil
		}

		_, _ = fmt.Fprintf(errOut, "[stats] %s cpu %.2f%% memory %s / %s disk %s\n",
			stats.State, stats.CPUAbsolute, formatBytes(stats.MemoryBytes),
			formatBytes(stats.MemoryLimitBytes), formatBytes(stats.DiskBytes))
	}

	return nil
}

func relayConsole(
	ctx context.Context,
	conn *console.Conn,
	natsURL, subject, identifier string,
	refresher console.Refresher,
) error {
	if subject == "" {
		subject = "ptero.console." + identifier
	}

	nc, err := nats.Connect(natsURL, nats.Name("ptero-console-"+identifier))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	err = console.Relay(ctx, conn, nc, subject, refresher)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("console relay ended: %w", err)
	}

	err = nc.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}

	return nil
}
