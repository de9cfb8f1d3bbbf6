package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/aldelar/ptu-ri-alert/ptu"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ptu-ri-alert",
		Short:        "Compare provisioned throughput deployments with purchased reservations",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(serveCmd(), replayCmd(), checkCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the azure functions custom handler",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, svc, err := Setup()
	if err != nil {
		return err
	}
	defer svc.Logs.Sync()

	l, err := net.Listen("tcp", net.JoinHostPort("", cfg.Port))
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, cfg, svc, l)
}

func replayCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "replay [file...]",
		Short: "Run JSON or YAML event fixtures through the event handler",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := Setup()
			if err != nil {
				return err
			}
			defer svc.Logs.Sync()

			return Replay(cmd.Context(), cfg, svc, cmd.OutOrStdout(), endpoint, args)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "post events to a running custom handler instead of handling them in-process")
	return cmd
}

func checkCmd() *cobra.Command {
	tgt := ptu.Target{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a capacity check for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := Setup()
			if err != nil {
				return err
			}
			defer svc.Logs.Sync()

			return Check(cmd.Context(), cfg, svc, cmd.OutOrStdout(), tgt)
		},
	}

	cmd.Flags().StringVar(&tgt.SubscriptionID, "subscription", "", "subscription id")
	cmd.Flags().StringVar(&tgt.ResourceGroup, "resource-group", "", "resource group of the account")
	cmd.Flags().StringVar(&tgt.AccountName, "account", "", "cognitive services account name")
	cmd.Flags().StringVar(&tgt.DeploymentName, "deployment", "", "deployment to report on")
	return cmd
}
