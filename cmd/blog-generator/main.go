// Package main provides a CLI for generating blog posts outside the API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tradepilot/tradepilot/internal/app"
	"github.com/tradepilot/tradepilot/internal/scheduler"
)

var (
	configFile string
	topic      string
	schedule   string

	application *app.App
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")

	generateCmd.Flags().StringVarP(&topic, "topic", "t", "", "Focus topic; when empty a news source is picked at random")
	scheduleCmd.Flags().StringVar(&schedule, "cron", "", "Cron expression overriding blog.schedule")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var rootCmd = &cobra.Command{
	Use:          "blog-generator",
	Short:        "Generate market blog posts",
	Long:         `Scrapes a financial news source, writes an article with the AI gateway and publishes it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cmd.Context(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		application, err = app.New(cmd.Context(), cfg, app.Options{})
		if err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Close()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and publish one post",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched := scheduler.NewScheduler(application.Blog, application.Logger)
		post, err := sched.RunOnce(cmd.Context(), topic)
		if err != nil {
			return err
		}

		application.Logger.WithFields(logrus.Fields{
			"slug":     post.Slug,
			"category": post.Category,
		}).Info("Blog post published")
		fmt.Fprintf(cmd.OutOrStdout(), "Published %q at /blog/%s\n", post.Title, post.Slug)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate posts on a cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := schedule
		if expr == "" {
			expr = application.Config.Blog.Schedule
		}

		sched := scheduler.NewScheduler(application.Blog, application.Logger)
		if err := sched.ScheduleBlogGeneration(expr); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}

		<-cmd.Context().Done()
		sched.Stop()
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
