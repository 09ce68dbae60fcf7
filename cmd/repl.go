package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/leftmike/cubist/repl"
)

var (
	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive console session",
		Args:  cobra.NoArgs,
		RunE:  replRun,
	}
)

func init() {
	cubistCmd.AddCommand(replCmd)
}

func replRun(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	return repl.Interact(context.Background(), repl.NewConsole(eng.executor, eng.schema,
		os.Stdout))
}
