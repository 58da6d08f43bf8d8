// Package cmd provides the coachsite command-line interface.
//
// Configuration is read, in order of precedence, from command-line flags,
// COACHSITE_<SECTION>_<OPTION> environment variables and a .coachsite.yml
// file. COACHSITE_CONFIG_FILE names a config file other than the default.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/content"
	"github.com/conneroisu/coachsite/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "coachsite",
	Short: "Content backend for a coaching website",
	Long: `coachsite serves the services, testimonials, blog posts and site
configuration of a coaching website as a JSON API, relays contact form
enquiries by email and reloads content when its files change.

Quick Start:
  coachsite serve                      Serve the built-in content
  coachsite serve --content-dir ./content
  coachsite validate --content-dir ./content
  coachsite list posts --featured`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .coachsite.yml, can also use COACHSITE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("content-dir", "", "directory holding the content files (default: built-in content)")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"logging.level": "log-level",
		"content.dir":   "content-dir",
	})
}

// bindFlags binds config keys to the named flags so that a flag set on the
// command line overrides the file and environment.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if flag := flags.Lookup(name); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("COACHSITE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".coachsite")
	}

	viper.SetEnvPrefix("COACHSITE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing default file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg *config.Config, out io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: out,
	}), nil
}

// contentSource reads from the configured directory, or the embedded
// content when none is set.
func contentSource(cfg *config.Config) content.Source {
	if cfg.Content.Dir == "" {
		return content.NewEmbeddedSource()
	}
	return content.NewDirSource(cfg.Content.Dir)
}
