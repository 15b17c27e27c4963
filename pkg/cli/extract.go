package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/paperboy/pkg/service/extract"
	"github.com/urfave/cli/v3"
)

func extractCommand() *cli.Command {
	var (
		cfg       config
		urlInput  string
		pdfPath   string
		imagePath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Usage:       "Extract article text from this URL",
			Destination: &urlInput,
		},
		&cli.StringFlag{
			Name:        "pdf",
			Usage:       "Extract text from this PDF file",
			Destination: &pdfPath,
		},
		&cli.StringFlag{
			Name:        "image",
			Usage:       "Extract OCR text from this image file",
			Destination: &imagePath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract text from an input without summarizing",
		ArgsUsage: "[text]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			source, payload, err := resolveInput(c, urlInput, pdfPath, imagePath)
			if err != nil {
				return err
			}

			text, err := extract.New().Extract(ctx, source, payload)
			if err != nil {
				return err
			}

			fmt.Println(text)
			return nil
		},
	}
}
