package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"automarket/internal/bootstrap"
	"automarket/internal/config"
	"automarket/internal/infrastructure/database"
	"automarket/internal/infrastructure/locking"
	"automarket/internal/logger"
	"automarket/internal/usecase"

	"github.com/jedib0t/go-pretty/v6/table"
	_ "github.com/joho/godotenv/autoload"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const sweepLockKey = "automarket:sweep"

var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Expires lapsed confirmation timers and releases lapsed job locks",
	Long: `sweeper drives the expiration sweep outside of the API process.

- once: run a single pass and print its counters.
- run: run a pass on SWEEP_SCHEDULE until interrupted; replicas coordinate through a Redis lock.
- pending: list quotes awaiting confirmation, including lapsed ones not swept yet.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(onceCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(pendingCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func withContainer(ctx context.Context, fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	c, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func onceCmd() *cobra.Command {
	var asTable bool
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run one sweep pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				// A failed pass still reports what it got done before failing.
				res, err := c.Sweep.Run(ctx)
				if perr := printResult(res, asTable); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "render the result as a table")
	return cmd
}

func printResult(res usecase.SweepResult, asTable bool) error {
	if !asTable {
		return printJSON(res)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Scanned", "Transitioned", "Locks released", "Notifications", "Failed"})
	tw.AppendRow(table.Row{res.Scanned, res.Transitioned, res.LocksReleased, res.NotificationsAttempted, res.Failed})
	tw.Render()
	return nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sweep on SWEEP_SCHEDULE until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withContainer(ctx, func(ctx context.Context, c *bootstrap.Container) error {
				rdb, err := database.ConnectRedis(ctx, c.Config)
				if err != nil {
					return err
				}
				defer rdb.Close()

				guard := locking.NewGuard(rdb, c.Log)
				scheduler := cron.New()
				_, err = scheduler.AddFunc(c.Config.SweepSchedule, func() {
					tick(ctx, guard, c.Sweep, c.Config.SweepLockTTL, c.Log)
				})
				if err != nil {
					return fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", c.Config.SweepSchedule, err)
				}

				c.Log.WithFields(logrus.Fields{"module": "sweeper", "schedule": c.Config.SweepSchedule}).Info("sweeper started")
				scheduler.Start()
				<-ctx.Done()
				<-scheduler.Stop().Done()
				c.Log.WithField("module", "sweeper").Info("sweeper stopped")
				return nil
			})
		},
	}
}

func tick(ctx context.Context, guard *locking.Guard, sweep usecase.ISweepUseCase, ttl time.Duration, log *logrus.Logger) {
	ran, err := guard.Run(ctx, sweepLockKey, ttl, func(ctx context.Context) error {
		res, err := sweep.Run(ctx)
		log.WithFields(logrus.Fields{
			"module":         "sweeper",
			"scanned":        res.Scanned,
			"transitioned":   res.Transitioned,
			"locks_released": res.LocksReleased,
			"failed":         res.Failed,
		}).Info("sweep pass finished")
		return err
	})
	if err != nil {
		logger.LogError(log, "sweeper", "tick", "sweep pass failed", nil, err)
		return
	}
	if !ran {
		log.WithField("module", "sweeper").Debug("another replica is sweeping")
	}
}

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List quotes awaiting confirmation with their countdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				quotes, err := c.Sweep.Pending(ctx)
				if err != nil {
					return err
				}
				now := time.Now().UTC()
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Quote", "Request", "Pro", "Expires at", "Remaining", "State"})
				for _, q := range quotes {
					expires := ""
					if q.ConfirmationTimerExpiresAt != nil {
						expires = q.ConfirmationTimerExpiresAt.Format(time.RFC3339)
					}
					state := "running"
					if q.Lapsed(now) {
						state = "lapsed"
					}
					tw.AppendRow(table.Row{q.ID, q.RequestID, q.ProID, expires, q.Remaining(now).Truncate(time.Second), state})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
