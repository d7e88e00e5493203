// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/observability"
)

// configKeyType is unexported so no other package can collide with the key.
type configKeyType struct{}

var configKey = configKeyType{}

// viperKeyAnnotation marks a flag with the config key it overrides.
const viperKeyAnnotation = "phishguard_viper_key"

// NewRootCommand builds a fresh command tree. Each call returns an
// independent tree, so tests never share flag state.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "phishguard",
		Short:         "PhishGuard classifies URLs as phishing or safe and explores the threat history.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if err := bindAnnotatedFlags(cmd, v); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "phishguard"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting PhishGuard", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, config.Interface(cfg)))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	annotateFlag(rootCmd.PersistentFlags(), "log-level", "logger.level")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	rootCmd.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newQueryCmd(),
		newImportCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree under ctx and flushes the logger. A cancelled
// context is reported as an abort, not a failure.
func Execute(ctx context.Context) error {
	defer observability.Sync()

	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	logger := observability.GetLogger()
	if errors.Is(err, context.Canceled) {
		logger.Info("Command aborted by signal.")
	} else {
		logger.Error("Command execution failed", zap.Error(err))
	}
	return err
}

// initializeConfig layers the config file and PHISHGUARD_* environment
// variables over the defaults already set on v.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PHISHGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}
	return nil
}

// annotateFlag records the config key a flag overrides.
func annotateFlag(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, viperKeyAnnotation, []string{key})
}

// bindAnnotatedFlags binds every annotated flag visible to cmd so that an
// explicitly set flag wins over the file and the environment.
func bindAnnotatedFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[viperKeyAnnotation]
		if !ok || len(keys) == 0 || bindErr != nil {
			return
		}
		if !f.Changed {
			return
		}
		bindErr = v.BindPFlag(keys[0], f)
	})
	return bindErr
}

// getConfigFromContext returns the configuration stored by PersistentPreRunE.
func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}
