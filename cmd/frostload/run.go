package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/insolar/frostload"
)

var runCmdConfig struct {
	configFile string
	scenario   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a load scenario",
	Long: `Runs a registered scenario by a yaml runner config.
Endpoint, credential and logging may be overridden with flags or FROSTLOAD_* env.`,
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindTargetFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		rc, err := frostload.LoadConfig(runCmdConfig.configFile)
		if err != nil {
			return err
		}
		applyOverrides(rc)
		if runCmdConfig.scenario != "" {
			rc.Scenario = runCmdConfig.scenario
		}
		if rc.Scenario == "" {
			return errors.Errorf("scenario is not set, available: %v", frostload.ScenarioNames())
		}
		s, err := frostload.ScenarioFromString(rc.Scenario)
		if err != nil {
			return err
		}
		r, err := frostload.NewRunner(rc, s)
		if err != nil {
			return err
		}
		maxRPS, err := r.Run(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("iterations: %d, failed: %d, max rps: %.2f\n", r.Iterations(), r.FailedIterations(), maxRPS)
		return nil
	},
}

// applyOverrides puts flag and env settings over the file values
func applyOverrides(rc *frostload.RunnerConfig) {
	if v := cfg.GetString(keyEndpoint); v != "" {
		rc.Target.Endpoint = v
	}
	if v := cfg.GetString(keyCredential); v != "" {
		rc.Target.Credential = v
	}
	if v := cfg.GetString(keyLogLevel); v != "" {
		rc.LogLevel = v
	}
	if v := cfg.GetString(keyLogEncoding); v != "" {
		rc.LogEncoding = v
	}
}

func init() {
	runCmd.Flags().StringVarP(&runCmdConfig.configFile, "config", "c", "", "runner yaml config")
	runCmd.Flags().StringVarP(&runCmdConfig.scenario, "scenario", "s", "", "scenario name, overrides config")
	_ = runCmd.MarkFlagRequired("config")
	targetFlags(runCmd)
}
