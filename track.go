package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kush-Patel15/KDS-system/client"
	"github.com/Kush-Patel15/KDS-system/config"
	"github.com/Kush-Patel15/KDS-system/domain"
)

func newTrackCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "track <code>",
		Short: "Look up one order by its human-readable code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cfgPath, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "kds.yaml", "config file path")

	return cmd
}

func runTrack(cfgPath, code string, cmd *cobra.Command) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	backend := client.New(cfg.BackendBaseURL, cfg.RequestTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	order, err := backend.FetchOrderByCode(ctx, code)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return fmt.Errorf("no order with code %q", code)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", order.Code, order.Status)
	for _, line := range order.Items {
		fmt.Fprintf(out, "  %dx %s (%s)\n", line.Quantity, line.Name, line.Station)
	}
	if order.SpecialInstruction != "" {
		fmt.Fprintf(out, "note: %s\n", order.SpecialInstruction)
	}
	if !order.CompletedAt.IsZero() {
		fmt.Fprintf(out, "completed %s\n", order.CompletedAt.Format(time.RFC3339))
	}
	return nil
}
