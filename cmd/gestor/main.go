package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadfc/gestor/internal/config"
	"github.com/cadfc/gestor/internal/database"
	"github.com/cadfc/gestor/internal/period"
	"github.com/cadfc/gestor/internal/pipeline"
	"github.com/cadfc/gestor/internal/report"
	"github.com/cadfc/gestor/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gestor",
	Short:   "Administração e relatórios da CADFC",
	Long:    "Gestor registra cultos, membros, aconselhamento e atividades externas, e gera os relatórios oficiais de gestão.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(membersCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gestor", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/gestor/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the organization name and the AI provider API key env var.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Records:")
		fmt.Printf("  Gatherings: %d\n", stats.Gatherings)
		fmt.Printf("  Members: %d\n", stats.Members)
		fmt.Printf("  Counseling sessions: %d (%d resolved)\n", stats.Counseling, stats.CounselingResolved)
		fmt.Printf("  External activities: %d\n", stats.Activities)
		return nil
	},
}

// --- report command ---

var (
	reportMonth  int
	reportYear   int
	reportAnnual bool
	reportNoAI   bool
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a monthly or annual management report",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sel := period.CurrentMonth()
		if reportMonth != 0 {
			if reportMonth < 1 || reportMonth > 12 {
				return fmt.Errorf("invalid month: %d", reportMonth)
			}
			sel.Month = time.Month(reportMonth)
		}
		if reportYear != 0 {
			sel.Year = reportYear
		}
		if reportAnnual {
			sel.Type = period.Annual
		}

		gen := pipeline.New(cfg, db)
		result, err := gen.Generate(context.Background(), sel, !reportNoAI)
		if err != nil {
			return fmt.Errorf("generating report: %w", err)
		}

		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		outDir := reportOut
		if outDir == "" {
			outDir = "."
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		name := report.ArtifactNameWithExt(sel, "md")
		target := filepath.Join(outDir, name)
		content := result.Markdown(cfg.Organization.Name)
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}

		fmt.Printf("Report for %s:\n", result.PeriodLabel)
		fmt.Printf("  Gatherings: %d (attendance %d, avg %d)\n",
			result.Summary.GatheringCount, result.Summary.TotalAttendance, result.Summary.AvgAttendance)
		fmt.Printf("  Counseling: %d (%d resolved)\n",
			result.Summary.CounselingTotal, result.Summary.CounselingResolved)
		fmt.Printf("  Activities: %d\n", result.Summary.ActivityCount)
		fmt.Printf("  Pages: %d\n", len(result.Document.Pages))
		fmt.Printf("\nWritten: %s\n", target)
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVarP(&reportMonth, "month", "m", 0, "Month 1-12 (default: current month)")
	reportCmd.Flags().IntVarP(&reportYear, "year", "y", 0, "Year (default: current year)")
	reportCmd.Flags().BoolVar(&reportAnnual, "annual", false, "Generate the annual report")
	reportCmd.Flags().BoolVar(&reportNoAI, "no-ai", false, "Skip the AI narrative")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output directory (default: current directory)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		gen := pipeline.New(cfg, db)
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, db, gen, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default: from config)")
}

// --- members command ---

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage the member roster",
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all members",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		members, err := db.GetAllMembers()
		if err != nil {
			return err
		}

		if len(members) == 0 {
			fmt.Println("No members registered. Add one with: gestor members add")
			return nil
		}

		fmt.Printf("Members (%d):\n\n", len(members))
		for _, m := range members {
			fmt.Printf("  %s\n", m.Name)
			if m.Phone != "" || m.Since != "" {
				fmt.Printf("        %s", m.Phone)
				if m.Since != "" {
					fmt.Printf("  desde %s", m.Since)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

var membersAddCmd = &cobra.Command{
	Use:   "add [name] [phone] [since]",
	Short: "Add a member to the roster",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		m := database.Member{Name: strings.TrimSpace(args[0])}
		if len(args) > 1 {
			m.Phone = args[1]
		}
		if len(args) > 2 {
			m.Since = args[2]
		}

		if _, err := db.InsertMember(m); err != nil {
			return err
		}
		fmt.Printf("Added member: %s\n", m.Name)
		return nil
	},
}

func init() {
	membersCmd.AddCommand(membersListCmd)
	membersCmd.AddCommand(membersAddCmd)
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "gestor.db")
	return database.Open(dbPath)
}
