package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "paperboy",
		Usage: "Multi-language news summarizer with a persistent vector memory",
		Commands: []*cli.Command{
			summarizeCommand(),
			consoleCommand(),
			memoryCommand(),
			audioCommand(),
			extractCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
