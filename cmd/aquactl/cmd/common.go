package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aqua-stark/world-binding/binding/dispatch"
	"github.com/aqua-stark/world-binding/binding/grpc"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/common/logging"
	"github.com/aqua-stark/world-binding/config"
	"github.com/aqua-stark/world-binding/facade"
	"github.com/aqua-stark/world-binding/workflow"
	"github.com/aqua-stark/world-binding/world/manifest"
)

const (
	cfgConfigFile = "config"
	cfgNamespace  = "namespace"
	cfgManifest   = "manifest"
	cfgRPCAddress = "rpc.address"
	cfgRPCTimeout = "rpc.timeout"
	cfgLogLevel   = "log.level"
	cfgLogFormat  = "log.format"
)

var (
	// RootFlags has the flags that are common across all commands.
	RootFlags = flag.NewFlagSet("", flag.ContinueOnError)

	cfg    *config.Config
	logger = logging.GetLogger("cmd/aquactl")
)

func initCommon(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile := viper.GetString(cfgConfigFile); cfgFile != "" {
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
	} else {
		defaults := config.DefaultConfig()
		cfg = &defaults
	}

	// Command line flags take precedence over the config file.
	if viper.IsSet(cfgNamespace) {
		cfg.Namespace = common.Namespace(viper.GetString(cfgNamespace))
	}
	if viper.IsSet(cfgManifest) {
		cfg.Manifest = viper.GetString(cfgManifest)
	}
	if viper.IsSet(cfgRPCAddress) {
		cfg.RPC.Address = viper.GetString(cfgRPCAddress)
	}
	if viper.IsSet(cfgRPCTimeout) {
		cfg.RPC.Timeout = viper.GetDuration(cfgRPCTimeout)
	}
	if viper.IsSet(cfgLogLevel) {
		if cfg.Log.Level == nil {
			cfg.Log.Level = make(map[string]string)
		}
		cfg.Log.Level[config.DefaultLogModule] = viper.GetString(cfgLogLevel)
	}
	if viper.IsSet(cfgLogFormat) {
		cfg.Log.Format = viper.GetString(cfgLogFormat)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := cfg.Log.LogFormat()
	if err != nil {
		return err
	}
	defaultLvl, moduleLvls, err := cfg.Log.Levels()
	if err != nil {
		return err
	}
	return logging.Initialize(os.Stderr, format, defaultLvl, moduleLvls)
}

// world is a connection to the world gateway.
type world struct {
	transport *grpc.Transport
	backend   *facade.Backend
}

func (w *world) Close() {
	_ = w.transport.Close()
}

func (w *world) workflows() *workflow.Workflows {
	return workflow.New(w.backend, workflow.Config{
		MaxAttempts: cfg.Reconcile.MaxAttempts,
		Interval:    cfg.Reconcile.Interval,
	})
}

func connect() (*world, error) {
	caps, err := manifest.Load(cfg.Manifest, cfg.Namespace)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.Dial(cfg.RPC.Address)
	if err != nil {
		logger.Error("failed to establish connection with the world gateway",
			"err", err,
			"address", cfg.RPC.Address,
		)
		return nil, err
	}
	transport := grpc.NewTransport(conn, cfg.RPC.Timeout)

	d, err := dispatch.New(cfg.Namespace, transport)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	return &world{
		transport: transport,
		backend:   facade.NewBackend(d, caps),
	}, nil
}

func init() {
	RootFlags.String(cfgConfigFile, "", "config file")
	RootFlags.String(cfgNamespace, string(common.DefaultNamespace), "world namespace")
	RootFlags.String(cfgManifest, "", "deployment manifest path")
	RootFlags.String(cfgRPCAddress, "", "world gateway address")
	RootFlags.Duration(cfgRPCTimeout, 0, "world gateway call timeout")
	RootFlags.String(cfgLogLevel, "info", "default log level")
	RootFlags.String(cfgLogFormat, "logfmt", "log format (logfmt, json)")
	_ = viper.BindPFlags(RootFlags)
}
