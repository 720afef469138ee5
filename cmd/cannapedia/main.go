package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/orenlebo/cannapedia/internal/app"
	"github.com/orenlebo/cannapedia/internal/config"
	"github.com/orenlebo/cannapedia/internal/logging"
)

const usage = `usage: cannapedia <command> [args]

commands:
  generate <name> [category]   generate and verify one entry
  bulk                         drain the pending generation queue
  sweep                        re-queue entries with outdated sources
  serve                        run the sweep + bulk cycle on schedule
  approve <slug>               promote a pending entry to verified
  search <query>               rank published entries against a query
  products <slug>              list catalog products relevant to an entry
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "generate":
		if len(args) < 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		category := ""
		if len(args) > 1 {
			category = args[1]
		}
		err = application.Generate(ctx, args[0], category)
	case "bulk":
		err = application.RunBulk(ctx)
	case "sweep":
		err = application.RunSweep(ctx)
	case "serve":
		err = application.Serve(ctx)
	case "approve":
		if len(args) != 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		err = application.Approve(ctx, args[0])
	case "search":
		if len(args) < 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		err = application.Search(ctx, strings.Join(args, " "))
	case "products":
		if len(args) != 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		err = application.Products(ctx, args[0])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}
