// Package cmd implements the warbandd command line.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

const (
	serviceName = "warband"

	flagEnvFile   = "env-file"
	flagSource    = "source"
	flagTemplates = "templates"
	flagWorld     = "world"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "warbandd",
		Short:         "battleground and arena match orchestration daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return loadEnvFile(cmd)
		},
	}
	rootCmd.PersistentFlags().String(flagEnvFile, ".env", "dotenv file read before the environment is parsed")

	rootCmd.AddCommand(
		newServeCmd(),
		newValidateCmd(),
		newSeedCmd(),
	)
	return rootCmd
}

// loadEnvFile reads the dotenv file into the process environment. A missing default file is
// ignored; a missing file named explicitly is an error.
func loadEnvFile(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil {
		return eris.Wrap(err, "failed to read env-file flag")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if cmd.Flags().Changed(flagEnvFile) {
			return eris.Wrapf(statErr, "env file %s", path)
		}
		return nil
	}
	return eris.Wrapf(godotenv.Load(path), "failed to load env file %s", path)
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagSource, "", "template row source: file, redis or mongo")
	cmd.Flags().String(flagTemplates, "", "template rows JSON file, used by the file source")
	cmd.Flags().String(flagWorld, "", "world data JSON file with definitions, locations and creatures")
}

func commandConfig(cmd *cobra.Command) (daemonConfig, error) {
	cfg, err := loadDaemonConfig()
	if err != nil {
		return daemonConfig{}, err
	}
	cfg.bindFlags(cmd)
	if err := cfg.validate(); err != nil {
		return daemonConfig{}, eris.Wrap(err, "invalid daemon config")
	}
	return cfg, nil
}
