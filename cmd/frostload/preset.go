package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/insolar/frostload/native"
	"github.com/insolar/frostload/preset"
)

var presetCmdConfig struct {
	preset.Config
	acl    string
	policy string
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Create containers and preload objects for a read scenario",
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindTargetFlags(cmd)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		l := logger("preset")
		c, err := native.Connect(cfg.GetString(keyEndpoint), cfg.GetString(keyCredential), native.WithLogger(l))
		if err != nil {
			return err
		}
		pc := presetCmdConfig.Config
		pc.Container = native.ContainerParams{
			ACL:             presetCmdConfig.acl,
			PlacementPolicy: presetCmdConfig.policy,
		}
		if err := pc.Container.Validate(); err != nil {
			return err
		}
		_, err = preset.Run(context.Background(), pc, c, l)
		return err
	},
}

func init() {
	f := presetCmd.Flags()
	f.IntVar(&presetCmdConfig.SizeKB, "size", 1, "upload objects size in kb")
	f.IntVar(&presetCmdConfig.Containers, "containers", 1, "number of containers to create")
	f.IntVar(&presetCmdConfig.Objects, "preload_obj", 0, "number of preloaded objects per container")
	f.StringVar(&presetCmdConfig.Out, "out", "preset.json", "json file with output")
	f.BoolVar(&presetCmdConfig.Update, "update", false, "reuse containers from --out file, new containers are not created")
	f.BoolVar(&presetCmdConfig.IgnoreErrors, "ignore-errors", false, "ignore preset errors")
	f.IntVar(&presetCmdConfig.Workers, "workers", preset.MaxWorkers, "count of workers, max 50")
	f.StringVar(&presetCmdConfig.acl, "acl", native.ACLPublicRead, "basic acl of containers")
	f.StringVar(&presetCmdConfig.policy, "policy", native.DefaultPlacementPolicy, "container placement policy")
	targetFlags(presetCmd)
}
