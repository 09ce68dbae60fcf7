package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leftmike/cubist/config"
	"github.com/leftmike/cubist/metrics"
)

var (
	cubistCmd = &cobra.Command{
		Use:               "cubist",
		Short:             "Evaluate filtered member sets",
		Long:              "Cubist compiles and evaluates Filter expressions over cube hierarchies.",
		PersistentPreRunE: cubistPreRun,
		PersistentPostRun: cubistPostRun,
		SilenceUsage:      true,
	}

	logFile   string
	logLevel  string
	logStderr bool
	logWriter io.WriteCloser

	configFile  = "cubist.hcl"
	noConfig    = false
	listConfig  = false
	metricsAddr = ""

	cfg    *config.Config
	params *config.Params
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
	})

	fs := cubistCmd.PersistentFlags()
	cfg = config.NewConfig(fs)
	params = cfg.Params()

	cfg.Var(&logFile, "log-file").Usage("`file` to use for logging").String("cubist.log")
	cfg.Var(&logLevel, "log-level").Env("CUBIST_LOG_LEVEL").
		Usage("log level: trace, debug, info, warn, error, fatal, or panic").String("info")
	cfg.Var(&logStderr, "log-stderr").Short("s").NoConfig().Usage("log to standard error").
		Bool(false)

	fs.StringVar(&configFile, "config-file", configFile, "`file` to load config from")
	fs.BoolVar(&noConfig, "no-config", noConfig, "don't load config file")
	fs.BoolVar(&listConfig, "list-config", listConfig, "list the config and then exit")
	fs.StringVar(&metricsAddr, "metrics-addr", metricsAddr,
		"`address` on which to serve prometheus metrics")
}

func Execute() error {
	return cubistCmd.Execute()
}

func cubistPreRun(cmd *cobra.Command, args []string) error {
	err := cfg.Env()
	if err != nil {
		return fmt.Errorf("cubist: %s", err)
	}

	if configFile != "" && !noConfig {
		err := cfg.LoadFile(configFile)
		if err != nil && (!os.IsNotExist(err) || cmd.Flags().Changed("config-file")) {
			return fmt.Errorf("cubist: %s", err)
		}
	}

	if listConfig {
		cfg.List(os.Stdout)
		os.Exit(0)
	}

	if !logStderr && logFile != "" {
		var err error
		logWriter, err = os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logWriter = nil
			return fmt.Errorf("cubist: %s", err)
		}
		log.SetOutput(logWriter)
	}

	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("cubist: %s", err)
	}
	log.SetLevel(ll)

	if metricsAddr != "" {
		go func() {
			err := http.ListenAndServe(metricsAddr, metrics.Handler())
			if err != nil {
				log.WithField("address", metricsAddr).WithError(err).
					Error("cubist: metrics server failed")
			}
		}()
	}

	log.WithField("pid", os.Getpid()).Info("cubist starting")
	return nil
}

func cubistPostRun(cmd *cobra.Command, args []string) {
	log.WithField("pid", os.Getpid()).Info("cubist done")

	if logWriter != nil {
		logWriter.Close()
	}
}
