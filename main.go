package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/t4ke0/stegno/v2/internal/config"
	"github.com/t4ke0/stegno/v2/internal/logger"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	cfg *config.Config
	log zerolog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		cfg:    config.Default(),
		log:    logger.New(stderr, config.DefaultLogLevel),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stegno",
		Short: "Hide messages inside PNG chunks",
		Long: `stegno stores messages in custom chunks of a PNG file.

Examples:
  stegno encode image.png "meet at noon" -t ruSt -k key
  stegno decode image.png -t ruSt -k key
  stegno remove image.png -t ruSt
  stegno print image.png`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.LogLevel
			if a.verbose {
				level = "debug"
			}
			a.log = logger.New(a.stderr, level)
			a.log.Debug().Str("config", a.configPath).Str("chunk_type", cfg.ChunkType).Msg("config loaded")
			return nil
		},
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $STEGNO_CONFIG or ~/.config/stegno/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.encodeCommand(),
		a.decodeCommand(),
		a.removeCommand(),
		a.printCommand(),
	)

	return root
}

// run executes the CLI with args and logs any failure.
func run(args []string, stdout, stderr io.Writer) error {
	a := newApp(stdout, stderr)
	root := a.rootCommand()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		a.log.Error().Msg(err.Error())
		return err
	}

	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
