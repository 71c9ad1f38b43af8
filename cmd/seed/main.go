package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ikkim/storybook-backend/config"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/db"
	"github.com/ikkim/storybook-backend/internal/fixture"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "storyseed",
	Short:         "Seed and maintain the story catalogue database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Initialize(logger.Config{
			Level:       "warn",
			Format:      "console",
			EnableColor: true,
		})

		if err := db.Initialize(&cfg.Database); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return db.Migrate(db.GetDB())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return db.Close()
	},
}

// --- loaddata ---

var loadDataCmd = &cobra.Command{
	Use:   "loaddata [fixture.json]",
	Short: "Load a JSON fixture (the bundled catalogue when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			fx  *fixture.Fixture
			err error
		)
		if len(args) == 1 {
			fx, err = fixture.LoadFile(args[0])
		} else {
			fx, err = fixture.Default()
		}
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			loaded, err := db.SeedIfEmpty(db.GetDB(), fx)
			if err != nil {
				return err
			}
			if !loaded {
				fmt.Println("Catalogue is not empty, nothing loaded. Use --force to load anyway.")
				return nil
			}
		} else if err := db.LoadFixture(db.GetDB(), fx); err != nil {
			return err
		}

		fmt.Printf("Installed %d object(s) from fixture\n", fx.Len())
		return nil
	},
}

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import <stories.xlsx>",
	Short: "Import stories from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		fmt.Printf("Reading XLSX file: %s\n", filePath)
		stories, report, err := fixture.ReadStoriesXLSX(filePath)
		if err != nil {
			return err
		}

		fmt.Printf("\nSummary:\n")
		fmt.Printf("  Total rows: %d\n", report.Rows)
		fmt.Printf("  Valid stories: %d\n", len(stories))
		fmt.Printf("  Skipped rows: %d\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Printf("    row %d: %s\n", s.Row, s.Reason)
		}
		if len(stories) == 0 {
			fmt.Println("Nothing to import.")
			return nil
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Do you want to proceed with the import? (yes/no): ") {
			fmt.Println("Import cancelled.")
			return nil
		}

		storyRepo := repository.NewStoryRepository(db.GetDB())
		if err := storyRepo.CreateBatch(stories); err != nil {
			return fmt.Errorf("failed to import stories: %w", err)
		}

		fmt.Println("Import completed successfully!")
		fmt.Printf("Total stories imported: %d\n", len(stories))
		return nil
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export <stories.xlsx>",
	Short: "Export every story to a spreadsheet in the import layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stories, err := repository.NewStoryRepository(db.GetDB()).FindAll()
		if err != nil {
			return err
		}
		if err := fixture.WriteStoriesXLSX(args[0], stories); err != nil {
			return fmt.Errorf("failed to write XLSX: %w", err)
		}
		fmt.Printf("Exported %d stories to %s\n", len(stories), args[0])
		return nil
	},
}

// --- createadmin ---

var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if username == "" || password == "" {
			return fmt.Errorf("--username and --password are required")
		}

		authService := service.NewAdminAuthService(
			repository.NewAdminUserRepository(db.GetDB()),
			nil,
			cfg.JWT.Secret,
			cfg.JWT.AccessTokenExpiry,
		)
		admin, err := authService.CreateAdmin(username, email, password, true)
		if err != nil {
			return err
		}
		fmt.Printf("Admin %q created.\n", admin.Username)
		return nil
	},
}

// --- orphans ---

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List stories whose age group or theme no longer exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := service.NewReportService(
			repository.NewAgeGroupRepository(db.GetDB()),
			repository.NewThemeRepository(db.GetDB()),
			repository.NewStoryRepository(db.GetDB()),
		)
		report, err := reports.OrphanReport()
		if err != nil {
			return err
		}
		if report.Empty() {
			fmt.Println("No orphaned stories.")
			return nil
		}

		for _, s := range report.Stories {
			fmt.Printf("%d\t%s\tage_group=%s\ttheme=%s\n", s.ID, s.Title, s.AgeGroup, s.Theme)
		}
		fmt.Printf("\nUnknown age groups: %s\n", strings.Join(report.UnknownAgeGroups, ", "))
		fmt.Printf("Unknown themes: %s\n", strings.Join(report.UnknownThemes, ", "))
		return nil
	},
}

func init() {
	loadDataCmd.Flags().Bool("force", false, "load even when the catalogue already has data")
	importCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	createAdminCmd.Flags().String("username", "", "admin username")
	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("password", "", "admin password")

	rootCmd.AddCommand(loadDataCmd, importCmd, exportCmd, createAdminCmd, orphansCmd)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
