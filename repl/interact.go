package repl

import (
	"context"
	"fmt"
	"os"

	"github.com/peterh/liner"
)

const (
	cubistHistory = ".cubist_history"
)

// Interact runs the console on the terminal with line editing and history.
func Interact(ctx context.Context, c *Console) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(cubistHistory); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	err := c.Run(ctx,
		func() (string, error) {
			s, err := line.Prompt("cubist> ")
			if err == liner.ErrPromptAborted {
				return "", nil
			} else if err != nil {
				return "", err
			}
			line.AppendHistory(s)
			return s, nil
		})

	if f, err := os.Create(cubistHistory); err != nil {
		fmt.Fprintf(os.Stderr, "cubist: error writing history file, %s: %s\n", cubistHistory,
			err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
	return err
}
