package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/service/extract"
	"github.com/m-mizutani/paperboy/pkg/usecase/pipeline"
	"github.com/urfave/cli/v3"
)

func summarizeCommand() *cli.Command {
	var (
		cfg       config
		urlInput  string
		pdfPath   string
		imagePath string
		langName  string
		reference string
		withAudio bool
		audioOut  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Usage:       "Summarize the article at this URL",
			Destination: &urlInput,
		},
		&cli.StringFlag{
			Name:        "pdf",
			Usage:       "Summarize the text of this PDF file",
			Destination: &pdfPath,
		},
		&cli.StringFlag{
			Name:        "image",
			Usage:       "Summarize the OCR text of this image file",
			Destination: &imagePath,
		},
		&cli.StringFlag{
			Name:        "lang",
			Aliases:     []string{"l"},
			Usage:       "Target language (English, Hindi, Marathi)",
			Value:       "English",
			Sources:     cli.EnvVars("PAPERBOY_LANG"),
			Destination: &langName,
		},
		&cli.StringFlag{
			Name:        "reference",
			Aliases:     []string{"r"},
			Usage:       "Reference text for evaluation",
			Destination: &reference,
		},
		&cli.BoolFlag{
			Name:        "audio",
			Usage:       "Render the selected summary to speech",
			Destination: &withAudio,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path to save synthesized audio",
			Value:       "summary.mp3",
			Destination: &audioOut,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, backendFlags(&cfg)...)
	flags = append(flags, exportFlags(&cfg)...)

	return &cli.Command{
		Name:      "summarize",
		Usage:     "Summarize news from text, a URL, a PDF, or an image",
		ArgsUsage: "[text]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			lang, err := model.ParseLanguage(langName)
			if err != nil {
				return err
			}

			source, payload, err := resolveInput(c, urlInput, pdfPath, imagePath)
			if err != nil {
				return err
			}

			text, err := extractInput(ctx, source, payload)
			if err != nil {
				return err
			}

			uc, closer, err := cfg.newPipeline(ctx, withAudio)
			if err != nil {
				return err
			}
			defer closer()

			sp := newSpinner(" summarizing...")
			sp.Start()
			out, err := uc.Run(ctx, pipeline.Input{
				Text:      text,
				Source:    source,
				Language:  lang,
				Reference: reference,
				WithAudio: withAudio,
			})
			sp.Stop()
			if err != nil {
				return err
			}

			printOutput(os.Stdout, out, lang)

			if len(out.Audio) > 0 && audioOut != "" {
				if err := os.WriteFile(audioOut, out.Audio, 0644); err != nil {
					return goerr.Wrap(err, "failed to save audio", goerr.V("path", audioOut))
				}
				fmt.Printf("Audio saved to %s\n", audioOut)
			}

			return nil
		},
	}
}

// resolveInput picks exactly one input kind from the flags and arguments
func resolveInput(c *cli.Command, urlInput, pdfPath, imagePath string) (model.SourceType, []byte, error) {
	set := 0
	for _, v := range []string{urlInput, pdfPath, imagePath} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return "", nil, goerr.New("only one of --url, --pdf, --image can be given")
	}

	switch {
	case urlInput != "":
		return model.SourceURL, []byte(urlInput), nil
	case pdfPath != "":
		data, err := os.ReadFile(pdfPath)
		if err != nil {
			return "", nil, goerr.Wrap(err, "failed to read PDF file", goerr.V("path", pdfPath))
		}
		return model.SourcePDF, data, nil
	case imagePath != "":
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return "", nil, goerr.Wrap(err, "failed to read image file", goerr.V("path", imagePath))
		}
		return model.SourceImage, data, nil
	}

	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return "", nil, goerr.New("no input: pass text as an argument or use --url, --pdf, --image")
	}
	return model.SourceText, []byte(text), nil
}

// extractInput runs extraction with a progress spinner
func extractInput(ctx context.Context, source model.SourceType, payload []byte) (string, error) {
	if source == model.SourceText {
		return strings.TrimSpace(string(payload)), nil
	}

	sp := newSpinner(" extracting...")
	sp.Start()
	defer sp.Stop()

	return extract.New().Extract(ctx, source, payload)
}

func newSpinner(suffix string) *spinner.Spinner {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = suffix
	return sp
}

// printOutput renders the pipeline result for the terminal
func printOutput(w io.Writer, out *pipeline.Output, lang model.Language) {
	fmt.Fprintf(w, "Model: %s\n", out.ModelName)
	fmt.Fprintf(w, "Context documents: %d\n", len(out.ContextDocs))
	if out.Stored {
		fmt.Fprintln(w, "Stored to memory: yes")
	}

	fmt.Fprintln(w, "\nScores:")
	for _, name := range model.BackendNames() {
		card, ok := out.Scores[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-8s rouge1=%.3f rouge2=%.3f rougeL=%.3f semantic=%.3f total=%.3f\n",
			name, card.Rouge1, card.Rouge2, card.RougeL, card.SemanticF1, card.Total())
	}

	if !out.Available {
		fmt.Fprintln(w, "\nSummary unavailable: all generation backends and fallbacks failed")
		return
	}

	fmt.Fprintf(w, "\nSummary (%s):\n%s\n", lang, out.Summary)
	if !lang.IsEnglish() && out.English != "" {
		fmt.Fprintf(w, "\nEnglish:\n%s\n", out.English)
	}
}
