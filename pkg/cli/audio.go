package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/adapter"
	"github.com/urfave/cli/v3"
)

func audioCommand() *cli.Command {
	var (
		cfg    config
		output string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path to save the fetched audio",
			Value:       "summary.mp3",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, exportFlags(&cfg)...)

	return &cli.Command{
		Name:      "audio",
		Usage:     "Fetch archived audio from the storage bucket",
		ArgsUsage: "<key>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			key := c.Args().First()
			if key == "" {
				return goerr.New("audio key is required (e.g. audio/<request-id>.mp3)")
			}
			if cfg.audioBucket == "" {
				return goerr.New("audio-bucket is required")
			}

			storage, err := adapter.NewStorage(ctx, cfg.audioBucket)
			if err != nil {
				return err
			}

			reader, err := storage.Get(ctx, key)
			if err != nil {
				return err
			}
			defer reader.Close()

			file, err := os.Create(output)
			if err != nil {
				return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
			}
			defer file.Close()

			if _, err := io.Copy(file, reader); err != nil {
				return goerr.Wrap(err, "failed to save audio", goerr.V("key", key))
			}

			fmt.Printf("Audio saved to %s\n", output)
			return nil
		},
	}
}
