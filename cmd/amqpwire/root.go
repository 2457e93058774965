package main

import (
	"fmt"

	"github.com/danmuck/amqpwire/internal/config"
	"github.com/danmuck/amqpwire/internal/logging"
	"github.com/spf13/cobra"
)

// app is the state shared by subcommands once the root has run.
type app struct {
	cfgFile  string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "amqpwire",
		Short: "Encode AMQP 0-9-1 method arguments and field tables",
		Long: `amqpwire encodes AMQP 0-9-1 method arguments and field tables described
in TOML or YAML documents, and prints the resulting wire bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (defaults apply when unset)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override: trace, debug, info, warn, error")

	root.AddCommand(
		newEncodeCmd(a),
		newTableCmd(a),
		newMethodsCmd(),
		newConfigCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg := config.Default()
	if a.cfgFile != "" {
		loaded, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logCfg := cfg.Logging()
	if a.logLevel != "" {
		lvl, ok := logging.ParseLevel(a.logLevel)
		if !ok {
			return fmt.Errorf("invalid --log-level %q", a.logLevel)
		}
		logCfg.Level = lvl
	}
	logging.Install(logCfg)
	a.cfg = cfg
	return nil
}
