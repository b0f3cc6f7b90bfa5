package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/laferre/catalogo/internal/config"
	"github.com/laferre/catalogo/internal/util"
	"github.com/laferre/catalogo/pkg/catalogo"
)

// Version information set by ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "catalogo",
	Short: "Catalogo is a supplier price catalog engine.",
	Long:  `Ingests heterogeneous supplier price lists into a unified, searchable, priced catalog.`,
	Run: func(cmd *cobra.Command, args []string) {
		slog.Info("Welcome to Catalogo! Use -h or --help for available commands.")
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration document.",
	Long:  `Creates a new catalogo.json configuration file in the current directory with default values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("file")
		if err := config.WriteDefault(configPath); err != nil {
			wrappedErr := util.WrapError(err, "Failed to write default config", slog.String("path", configPath))
			util.LogError(util.Logger, wrappedErr)
			return wrappedErr
		}
		slog.Info("Default configuration written", "path", configPath)
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ingest the input directory and report supplier counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		configPath, _ := cmd.Flags().GetString("config")

		engine := catalogo.New(dir, configPath)
		summary, err := engine.Reload(cmd.Context())
		if err != nil {
			wrappedErr := util.WrapError(err, "Reload failed", slog.String("dir", dir))
			util.LogError(util.Logger, wrappedErr)
			return wrappedErr
		}

		slog.Info("Reload complete",
			"files_seen", summary.FilesSeen,
			"suppliers_loaded", summary.SuppliersLoaded,
			"rows_total", summary.RowsTotal,
			"rejected_files", summary.RejectedFiles,
		)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Reload then search the catalog.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		configPath, _ := cmd.Flags().GetString("config")
		limit, _ := cmd.Flags().GetInt("limit")
		supplier, _ := cmd.Flags().GetString("supplier")

		engine := catalogo.New(dir, configPath)
		if _, err := engine.Reload(cmd.Context()); err != nil {
			wrappedErr := util.WrapError(err, "Reload before search failed", slog.String("dir", dir))
			util.LogError(util.Logger, wrappedErr)
			return wrappedErr
		}

		hits := engine.Search(args[0], limit, supplier)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	},
}

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List suppliers currently in the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		configPath, _ := cmd.Flags().GetString("config")

		engine := catalogo.New(dir, configPath)
		if _, err := engine.Reload(cmd.Context()); err != nil {
			wrappedErr := util.WrapError(err, "Reload before listing suppliers failed", slog.String("dir", dir))
			util.LogError(util.Logger, wrappedErr)
			return wrappedErr
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(engine.ListSuppliers())
	},
}

var setMarginCmd = &cobra.Command{
	Use:   "set-margin <supplier> <markup>",
	Short: "Set and persist a supplier's markup and discount cascade.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		d1Flag, _ := cmd.Flags().GetString("d1")
		d2Flag, _ := cmd.Flags().GetString("d2")

		markup, err := decimal.NewFromString(args[1])
		if err != nil {
			return util.WrapError(err, "Invalid markup value", slog.String("markup", args[1]))
		}
		d1, err := decimal.NewFromString(d1Flag)
		if err != nil {
			return util.WrapError(err, "Invalid d1 value", slog.String("d1", d1Flag))
		}
		d2, err := decimal.NewFromString(d2Flag)
		if err != nil {
			return util.WrapError(err, "Invalid d2 value", slog.String("d2", d2Flag))
		}

		engine := catalogo.New(".", configPath)
		if err := engine.UpdateMargin(args[0], markup, d1, d2); err != nil {
			wrappedErr := util.WrapError(err, "Failed to persist margin", slog.String("supplier", args[0]))
			util.LogError(util.Logger, wrappedErr)
			return wrappedErr
		}
		slog.Info("Margin updated", "supplier", args[0], "markup", markup.String(), "d1", d1.String(), "d2", d2.String())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Catalogo %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", date)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suppliersCmd)
	rootCmd.AddCommand(setMarginCmd)
	rootCmd.AddCommand(versionCmd)

	initCmd.Flags().StringP("file", "f", config.DefaultConfigPath, "Path to write the configuration file")

	rootCmd.PersistentFlags().String("dir", ".", "Input directory holding supplier files")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "Path to the configuration file")

	searchCmd.Flags().Int("limit", 10, "Maximum number of hits to return")
	searchCmd.Flags().String("supplier", "", "Restrict the search to one supplier")

	setMarginCmd.Flags().String("d1", "0", "First discount percentage")
	setMarginCmd.Flags().String("d2", "0", "Second discount percentage")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(*util.CatalogoError); !ok {
			err = util.WrapError(err, "Command execution failed")
		}
		util.LogError(util.Logger, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
