package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/config"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	rootDir string
	verbose bool
	jsonOut bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reposcope",
	Short: "RepoScope - knowledge-graph analytics for your repository",
	Long: `RepoScope analyzes the knowledge graph produced by a repository scan:
import cycles, change coupling, knowledge distribution, change risk,
technical-debt cost and health trends.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				logger.WithError(err).Fatal("cannot determine working directory")
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .reposcope/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "repository root (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable JSON output")

	rootCmd.SetVersionTemplate(`RepoScope {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(couplingCmd)
	rootCmd.AddCommand(busfactorCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}
