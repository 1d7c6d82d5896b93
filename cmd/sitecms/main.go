package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pharmaweb/sitecms"
)

const usage = `usage: sitecms <command> [flags]

commands:
  serve    run the public site and admin API
  import   import a markdown directory into blog or news
`

var moduleBuilder = func(cfg sitecms.Config) (*sitecms.Module, error) {
	return sitecms.New(cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("sitecms: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("command is required")
	}
	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:], out)
	case "import":
		return runImport(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadConfig reads path when given, otherwise the defaults.
func loadConfig(path string) (sitecms.Config, error) {
	if path == "" {
		cfg := sitecms.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return sitecms.LoadConfig(path)
}
