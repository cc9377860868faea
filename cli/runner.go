package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/viant/lore"
)

const envFile = ".env"

func Run(args []string) error {
	return RunWith(context.Background(), args, os.Stdout)
}

// RunWith parses args and executes the selected command writing results to out.
func RunWith(ctx context.Context, args []string, out io.Writer) error {
	if _, err := os.Stat(envFile); err == nil {
		if err = godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %v: %w", envFile, err)
		}
	}
	options := &Options{}
	parser := flags.NewParser(options, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if options.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	options.Client.Logger = &logger
	if err := defaultStore(&options.Client); err != nil {
		return err
	}
	cli, err := lore.NewClient(&options.Client)
	if err != nil {
		return err
	}
	runner := &runner{client: cli, out: out, logger: logger}
	return runner.run(ctx, parser.Active.Name, options)
}

// defaultStore persists tokens encrypted under the user home directory unless configured otherwise.
func defaultStore(options *lore.ClientOptions) error {
	if options.Auth == nil {
		options.Auth = &lore.ClientAuth{}
	}
	if options.Auth.StoreType != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	options.Auth.StoreType = "secure"
	options.Auth.StoreURL = filepath.Join(home, ".lore")
	return nil
}
