package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore"
	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore/logging"
)

const usage = `Usage: cfgcore-go [-config file.yaml] <command> [flags]

Commands:
  describe                     print the embedded interface description
  verify                       open the native library and check its ABI
  read -store NAME -key KEY    read one value from a bundled config
  version                      print wrapper and interface versions
`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, cmd string, args []string) error {
	switch cmd {
	case "describe":
		os.Stdout.Write(cfgcore.InterfaceYAML())
		return nil
	case "version":
		fmt.Printf("cfgcore-go version: %s\n", cfgcore.WrapperVersion())
		fmt.Printf("interface abi: %s\n", cfgcore.InterfaceVersion())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = cfg.Logger.Sync() }()

	switch cmd {
	case "verify":
		return verify(cfg)
	case "read":
		return read(cfg, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadConfig(path string) (cfgcore.Config, error) {
	var cfg cfgcore.Config
	if path != "" {
		c, err := cfgcore.LoadConfig(path)
		if err != nil {
			return cfgcore.Config{}, err
		}
		cfg = c
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return cfgcore.Config{}, fmt.Errorf("build logger: %w", err)
	}
	cfg.Logger = logger.With(zap.String("cmd", "cfgcore-go"))
	return cfg, nil
}

func open(cfg cfgcore.Config) (*cfgcore.Library, error) {
	lib, err := cfgcore.Open(cfg)
	if errors.Is(err, cfgcore.ErrNotBuilt) {
		return nil, fmt.Errorf("native library unavailable in this build: %w", err)
	}
	return lib, err
}

func verify(cfg cfgcore.Config) error {
	lib, err := open(cfg)
	if err != nil {
		var ae *cfgcore.ABIError
		if errors.As(err, &ae) {
			for _, m := range ae.Mismatches {
				fmt.Printf("mismatch %s\n", m)
			}
		}
		return err
	}
	defer lib.Close()

	fmt.Printf("native library %s, abi %s: ok\n", lib.NativeVersion(), lib.ABIVersion())
	return nil
}

func read(cfg cfgcore.Config, args []string) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	store := fs.String("store", "config-a", "bundled config to open")
	key := fs.String("key", "", "key to read")
	timeout := fs.Duration("timeout", 5*time.Second, "overall deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return errors.New("-key is required")
	}

	lib, err := open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := lib.Close(); cerr != nil {
			cfg.Logger.Warn("close failed", zap.Error(cerr))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logging.WithFields(ctx, zap.String("store", *store), zap.String("key", *key))

	st, err := lib.OpenStore(ctx, *store)
	if err != nil {
		return err
	}
	defer st.Release()

	v, err := cfgcore.ReadValue(ctx, st, *key)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}
