// Package cmd provides the command-line interface for memsim.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/memspace/memspace"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "MEMSIM"

const (
	keyCapacity   = "capacity"
	keyAutoDefrag = "auto-defrag"
	keyStrictFree = "strict-free"
	keyTraceDB    = "trace-db"
	keyLogLevel   = "log-level"
)

// config holds the values shared by all subcommands.
type config struct {
	Capacity   int
	AutoDefrag bool
	StrictFree bool
	TraceDB    string
	LogLevel   string

	logger *zap.Logger
}

func (c *config) addFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.IntVar(&c.Capacity, keyCapacity, 100, "number of words in the memory space")
	f.BoolVar(&c.AutoDefrag, keyAutoDefrag, false, "defragment after every free")
	f.BoolVar(&c.StrictFree, keyStrictFree, false,
		"fail when freeing an address that is not allocated")
	f.StringVar(&c.TraceDB, keyTraceDB, "",
		"record every event into this SQLite file (without extension)")
	f.StringVar(&c.LogLevel, keyLogLevel, "warn",
		"log level: debug, info, warn or error")
}

// NewRootCmd creates the memsim command tree.
func NewRootCmd() *cobra.Command {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:   "memsim",
		Short: "memsim simulates a first-fit memory allocator.",
		Long: `memsim simulates a memory space that hands out ranges with a ` +
			`first-fit policy. It runs allocation scripts, shows the ` +
			`free and allocated lists, and can serve a space over HTTP.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initializeConfig(cmd); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			return cfg.initLogger()
		},
	}

	cfg.addFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newDemoCmd(cfg))
	rootCmd.AddCommand(newServeCmd(cfg))

	return rootCmd
}

// Execute runs the root command and exits the process. Exit handlers
// registered with atexit, such as trace flushes, run first.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// initializeConfig loads .env and applies MEMSIM_ variables to the flags
// that were not set on the command line.
func initializeConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return bindFlags(cmd, v)
}

// bindFlags copies viper values into every flag the user did not set.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr []error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so --trace-db
		// binds to MEMSIM_TRACE_DB.
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
			if err != nil {
				bindFlagErr = append(bindFlagErr,
					fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = append(bindFlagErr,
					fmt.Errorf("setting flag %q value: %w", f.Name, err))
				return
			}
		}
	})

	return errors.Join(bindFlagErr...)
}

func (c *config) initLogger() error {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", keyLogLevel, c.LogLevel, err)
	}

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	c.logger = logger
	memspace.SetLogger(logger)

	return nil
}
