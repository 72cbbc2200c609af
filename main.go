package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fieldops-app/config"
	"fieldops-app/database"
	havsapi "fieldops-app/internal/api/havs"
	routes "fieldops-app/internal/app/http"
	"fieldops-app/internal/client/api"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/infra/archive"
	"fieldops-app/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldops",
		Short: "Field operations API: HAVS exposure weeks, gangs and employees",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")

	rootCmd.AddCommand(serveCmd(), migrateCmd(), exportWeekCmd(), weekEndingCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initApp() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	config.App = cfg

	if _, err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if _, err := database.InitDB(cfg.DBURL); err != nil {
		return err
	}
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg := config.App
	if err := database.Migrate(database.DB); err != nil {
		return err
	}

	a, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	havsapi.UseArchiver(a)
	if cfg.Archive.Bucket != "" {
		zap.L().Info("archiving submitted weeks", zap.String("bucket", cfg.Archive.Bucket))
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := routes.NewEngine(cfg)

	zap.L().Info("server starting", zap.String("port", cfg.Port))
	return r.Run(":" + cfg.Port)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate(database.DB)
		},
	}
}

func exportWeekCmd() *cobra.Command {
	var revision int
	cmd := &cobra.Command{
		Use:   "export-week <week-id>",
		Short: "Write a week's CSV export to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				d   *havs.WeekDetails
				err error
			)
			if revision > 0 {
				d, err = havs.LoadRevision(ctx, database.DB, args[0], revision)
			} else {
				d, err = havs.LoadDetails(ctx, database.DB, args[0])
			}
			if err != nil {
				return fmt.Errorf("load week %s: %w", args[0], err)
			}

			zap.L().Debug("exporting week",
				zap.String("week_id", d.ID),
				zap.String("status", d.Status),
				zap.Int("revision", d.RevisionNumber))
			return havs.WriteCSV(cmd.OutOrStdout(), havs.ExportRows(d))
		},
	}
	cmd.Flags().IntVarP(&revision, "revision", "r", 0, "export a stored revision snapshot instead of the live week")
	return cmd
}

func weekEndingCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "week-ending [YYYY-MM-DD]",
		Short: "Print the HAVS week ending for a date (today by default)",
		Args:  cobra.MaximumNArgs(1),
		// needs neither the database nor a config file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			d := havs.NewDate(time.Now())
			if len(args) == 1 {
				parsed, err := havs.ParseDate(args[0])
				if err != nil {
					return err
				}
				d = parsed
			}

			weekEnding := havs.WeekEndingFor(d)
			if server != "" {
				c := api.New(server, api.WithToken(os.Getenv("FIELDOPS_TOKEN")))
				weekEnding = c.WeekEnding(cmd.Context(), d)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), weekEnding)
			return err
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "API base URL; the local rule is used when empty or unreachable")
	return cmd
}
