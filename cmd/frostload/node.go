package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/insolar/frostload/node"
)

var nodeCmdConfig struct {
	addr  string
	store string
	debug bool
}

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Serve an in-process storage node",
	RunE: func(_ *cobra.Command, _ []string) error {
		l := logger("node")
		n, err := node.New(node.Config{StorePath: nodeCmdConfig.store, Debug: nodeCmdConfig.debug}, l)
		if err != nil {
			return err
		}
		defer n.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := n.Serve(ctx, nodeCmdConfig.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	nodeCmd.Flags().StringVar(&nodeCmdConfig.addr, "addr", ":8080", "listen address")
	nodeCmd.Flags().StringVar(&nodeCmdConfig.store, "store", node.DefaultStorePath, "buntdb file, in memory by default")
	nodeCmd.Flags().BoolVar(&nodeCmdConfig.debug, "debug", false, "log every request")
}
