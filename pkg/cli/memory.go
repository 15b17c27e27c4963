package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/urfave/cli/v3"
)

func memoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Inspect and manage the vector memory",
		Commands: []*cli.Command{
			memoryAddCommand(),
			memorySearchCommand(),
			memoryListCommand(),
		},
	}
}

func memoryAddCommand() *cli.Command {
	var (
		cfg      config
		filePath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Read the document text from a file",
			Destination: &filePath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Add a document to the memory",
		ArgsUsage: "[text]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if filePath != "" {
				data, err := os.ReadFile(filePath)
				if err != nil {
					return goerr.Wrap(err, "failed to read file", goerr.V("path", filePath))
				}
				text = strings.TrimSpace(string(data))
			}
			if text == "" {
				return goerr.New("no text: pass it as an argument or use --file")
			}

			mem, closer, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			if mem.Add(ctx, text, model.SourceText, "") {
				fmt.Println("Document added")
			} else {
				fmt.Println("Document not added (duplicate or storage failure)")
			}
			return nil
		},
	}
}

func memorySearchCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of documents to return",
			Value:       3,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search the memory for similar documents",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("query is required")
			}

			mem, closer, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			texts := mem.Search(ctx, query, int(limit))
			if len(texts) == 0 {
				fmt.Println("No similar documents found")
				return nil
			}

			for i, text := range texts {
				fmt.Printf("--- %d ---\n%s\n", i+1, text)
			}
			return nil
		},
	}
}

func memoryListCommand() *cli.Command {
	var (
		cfg    config
		offset int64
		limit  int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "offset",
			Usage:       "Number of documents to skip",
			Destination: &offset,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of documents to show",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List stored documents in insertion order",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			docs, err := repo.ListDocuments(ctx, int(offset), int(limit))
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Println("Memory is empty")
				return nil
			}

			for _, doc := range docs {
				preview := doc.SummaryPreview
				if preview == "" {
					preview = doc.Text
				}
				if runes := []rune(preview); len(runes) > 80 {
					preview = string(runes[:80]) + "..."
				}
				fmt.Printf("%s  %-6s  %s  %s\n",
					doc.ID, doc.Source, doc.CreatedAt.Format(time.RFC3339), preview)
			}
			return nil
		},
	}
}
