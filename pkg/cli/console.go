package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/usecase/pipeline"
	"github.com/urfave/cli/v3"
)

func consoleCommand() *cli.Command {
	var (
		cfg      config
		langName string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "lang",
			Aliases:     []string{"l"},
			Usage:       "Target language (English, Hindi, Marathi)",
			Value:       "English",
			Sources:     cli.EnvVars("PAPERBOY_LANG"),
			Destination: &langName,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, backendFlags(&cfg)...)
	flags = append(flags, exportFlags(&cfg)...)

	return &cli.Command{
		Name:  "console",
		Usage: "Interactive summarization session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			lang, err := model.ParseLanguage(langName)
			if err != nil {
				return err
			}

			uc, closer, err := cfg.newPipeline(ctx, false)
			if err != nil {
				return err
			}
			defer closer()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "paperboy> ",
				InterruptPrompt: "^C",
			})
			if err != nil {
				return goerr.Wrap(err, "failed to open console")
			}
			defer rl.Close()

			fmt.Println("Paste news text to summarize. Type \"exit\" to quit.")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if len(line) == 0 {
						break
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				text := strings.TrimSpace(line)
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					break
				}

				sp := newSpinner(" summarizing...")
				sp.Start()
				out, err := uc.Run(ctx, pipeline.Input{
					Text:     text,
					Source:   model.SourceText,
					Language: lang,
				})
				sp.Stop()

				if err != nil {
					if errors.Is(err, model.ErrNotNews) {
						fmt.Println("This does not look like news. Try a news article.")
						continue
					}
					fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
					continue
				}

				printOutput(os.Stdout, out, lang)
				fmt.Println()
			}

			return nil
		},
	}
}
