package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	MajorVersion = 0
	MinorVersion = 1
)

func Version() string {
	return fmt.Sprintf("Cubist %d.%d on %s %s, compiled by %s", MajorVersion, MinorVersion,
		runtime.GOARCH, runtime.GOOS, runtime.Version())
}

func init() {
	cubistCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of Cubist",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(Version())
			},
		})
}
