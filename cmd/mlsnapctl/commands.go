package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/report"
	"github.com/MLBB-BOSS/MLSnap/internal/seeds"
	"github.com/MLBB-BOSS/MLSnap/internal/services"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/MLBB-BOSS/MLSnap/pkg/utils"
	"github.com/spf13/cobra"
)

// migrateCmd applies the schema and data migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

// seedCmd re-reads the catalog file and adds new items
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add catalog items that are not in the database yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		added, err := seeds.SeedCatalog(cmd.Context(), a.DB, a.Catalog)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog has %d items, %d added\n", a.Catalog.Len(), added)
		return nil
	},
}

var importUsersCmd = &cobra.Command{
	Use:   "import-users <file.csv>",
	Short: "Register users from a user_id,display_name CSV file",
	Long: `Register users from a CSV file with one user_id,display_name row per user.

Users that already exist keep their display name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := seeds.ImportUsers(cmd.Context(), a.Registry, f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users\n", n)
		return nil
	},
}

var (
	reportDir    string
	reportUpload bool
)

// reportCmd writes the per-user totals as JSON plus a bar chart
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export per-user screenshot totals",
	Long: `Export per-user screenshot totals.

Writes contributions_report.json and contributions_chart.png into --out.
With --upload both files are also copied to the R2 archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Reporter.ContributionReport(cmd.Context())
		if err != nil {
			return err
		}

		var jsonBuf bytes.Buffer
		if err := report.WriteJSON(&jsonBuf, entries); err != nil {
			return err
		}
		chart, err := report.BarChart(report.UserBars(entries))
		if err != nil {
			return err
		}

		files := []struct {
			name, contentType string
			body              []byte
		}{
			{"contributions_report.json", "application/json", jsonBuf.Bytes()},
			{"contributions_chart.png", "image/png", chart},
		}

		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return err
		}
		for _, file := range files {
			path := filepath.Join(reportDir, file.name)
			if err := os.WriteFile(path, file.body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		}

		if !reportUpload {
			return nil
		}
		if a.Archiver == nil {
			return fmt.Errorf("--upload needs the R2_* settings")
		}
		stamp := time.Now().UTC().Format("20060102-150405")
		for _, file := range files {
			url, err := a.Archiver.Put(cmd.Context(), "reports/"+stamp+"/"+file.name, file.contentType, file.body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", url)
		}
		return nil
	},
}

// reevaluateCmd catches users up after the badge table changes
var reevaluateCmd = &cobra.Command{
	Use:   "reevaluate-badges",
	Short: "Award badges earned under the current badge table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.Registry.UserIDs(cmd.Context())
		if err != nil {
			return err
		}
		awards, err := a.BadgeSvc.EvaluateAll(cmd.Context(), ids)
		for _, id := range ids {
			if names, ok := awards[id]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", id, names)
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Checked %d users, %d received badges\n", len(ids), len(awards))
		return nil
	},
}

// digestCmd sends the periodic summary once
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send every contributor their total now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sent, err := services.NewDigest(a.Reporter, a.Notifier).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d digests\n", sent)
		return nil
	},
}

var (
	tokenService string
	tokenTTL     time.Duration
)

// tokenCmd issues a bearer token for a transport adapter
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the /api routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := utils.GenerateToken(cfg.JWTSecret, tokenService, tokenTTL)
		if err != nil {
			return err
		}
		logger.Info().Str("service", tokenService).Dur("ttl", tokenTTL).Msg("Issued service token")
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDir, "out", ".", "Directory for the report files")
	reportCmd.Flags().BoolVar(&reportUpload, "upload", false, "Also upload the files to the R2 archive")

	tokenCmd.Flags().StringVar(&tokenService, "service", "telegram-bot", "Name of the adapter the token is for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 365*24*time.Hour, "Token lifetime")
}
