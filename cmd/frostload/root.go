// Root of command-line argument parsing, based on the standard cobra template.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insolar/frostload"
	// registers scenarios
	_ "github.com/insolar/frostload/scenarios"
)

const envPrefix = "FROSTLOAD"

// Settings which may come from flags or FROSTLOAD_* environment, flags win
const (
	keyEndpoint    = "endpoint"
	keyCredential  = "credential"
	keyLogLevel    = "log_level"
	keyLogEncoding = "log_encoding"
)

var cfg = viper.New()

var rootCmd = &cobra.Command{
	Use:   "frostload",
	Short: "Load testing harness for FrostFS-like object storage",
	Long: `Runs staged load scenarios against a storage node or S3 gateway,
prepares preset objects and serves an in-process storage node.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, k := range []string{keyEndpoint, keyCredential, keyLogLevel, keyLogEncoding} {
		_ = cfg.BindEnv(k)
	}

	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "log level: debug|info|warn|error")
	pf.String("log-encoding", "", "log encoding: console|json")
	_ = cfg.BindPFlag(keyLogLevel, pf.Lookup("log-level"))
	_ = cfg.BindPFlag(keyLogEncoding, pf.Lookup("log-encoding"))

	rootCmd.AddCommand(runCmd, presetCmd, nodeCmd, versionCmd)
}

// targetFlags adds endpoint and credential flags bound to the shared settings
func targetFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", "", "storage node or gateway host:port")
	cmd.Flags().String("credential", "", "hex encoded private key, empty for a random one")
}

// bindTargetFlags binds flags of the command being executed, commands share keys
func bindTargetFlags(cmd *cobra.Command) {
	_ = cfg.BindPFlag(keyEndpoint, cmd.Flags().Lookup("endpoint"))
	_ = cfg.BindPFlag(keyCredential, cmd.Flags().Lookup("credential"))
}

func logger(name string) *frostload.Logger {
	return frostload.NewNamedLogger(name, cfg.GetString(keyLogEncoding), cfg.GetString(keyLogLevel))
}
