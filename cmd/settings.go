package cmd

import (
	"flag"
	"log/slog"
	"os"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/provider"
)

type settingsFlags struct {
	cfgPath string
	envFile string
}

func (f *settingsFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.cfgPath, "config", "", "path to configuration file")
	fs.StringVar(&f.envFile, "env-file", "", "path to a dotenv file with provider keys")
}

// load resolves configuration and credentials. The env file only fills
// variables that are not already set in the process environment.
func (f *settingsFlags) load() (config.Config, provider.Credentials, error) {
	if f.envFile != "" {
		if err := config.LoadEnvFile(f.envFile); err != nil {
			return config.Config{}, nil, err
		}
	}

	cfg := config.Default()
	if f.cfgPath != "" {
		loaded, err := config.Load(f.cfgPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	}

	return cfg, cfg.Credentials(os.LookupEnv), nil
}

func configureLogging(cfg config.Config) error {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
