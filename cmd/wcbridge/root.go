package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/thesyncim/wcbridge"
	"github.com/thesyncim/wcbridge/internal/logging"
)

// app carries what every subcommand shares.
type app struct {
	v   *viper.Viper
	log *logrus.Logger
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	a := &app{v: v, log: logrus.StandardLogger()}
	var configFile string

	root := &cobra.Command{
		Use:          "wcbridge",
		Short:        "Bridge codec engine streams and WebCodecs-style configs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(configFile); err != nil {
				return err
			}
			return a.setupLogger(cmd)
		},
	}

	def := logging.DefaultConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./wcbridge.yaml or $HOME/.config/wcbridge/wcbridge.yaml)")
	pf.String("log-level", def.Level, "log level (trace, debug, info, warn, error)")
	pf.String("log-format", def.Format, "log format (text or json)")
	pf.String("log-file", "", "log to a daily rotated file instead of stderr")
	pf.Bool("libav", false, "answer codec and pixel format queries from the system libav libraries")
	mustBind(v, "log.level", pf.Lookup("log-level"))
	mustBind(v, "log.format", pf.Lookup("log-format"))
	mustBind(v, "log.file", pf.Lookup("log-file"))
	mustBind(v, "libav", pf.Lookup("libav"))
	v.SetDefault("log.rotation-time", def.RotationTime)
	v.SetDefault("log.max-age-days", def.MaxAgeDays)

	v.SetEnvPrefix("WCBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newCodecStringCommand(a))
	root.AddCommand(newParseCommand(a))
	root.AddCommand(newRelayCommand(a))
	root.AddCommand(newEngineCommand(a))
	return root
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

func (a *app) loadConfig(file string) error {
	if file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName("wcbridge")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "wcbridge"))
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) setupLogger(cmd *cobra.Command) error {
	c := logging.Config{
		Level:        a.v.GetString("log.level"),
		Format:       a.v.GetString("log.format"),
		File:         a.v.GetString("log.file"),
		RotationTime: a.v.GetDuration("log.rotation-time"),
		MaxAgeDays:   a.v.GetInt("log.max-age-days"),
		ReportCaller: a.v.GetBool("log.report-caller"),
		Stderr:       cmd.ErrOrStderr(),
	}
	log, err := c.NewLogger()
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// engine returns the engine subcommands run conversions against.
func (a *app) engine() (*wcbridge.MemoryEngine, error) {
	if !a.v.GetBool("libav") {
		return wcbridge.NewMemoryEngine(), nil
	}
	cat, err := wcbridge.NewLibavCatalog()
	if err != nil {
		return nil, err
	}
	a.log.WithField("avcodec", cat.Version()).Debug("using libav catalog")
	return wcbridge.NewMemoryEngine(
		wcbridge.WithCatalog(cat),
		wcbridge.WithReportedVersion(cat.Version()),
	), nil
}
