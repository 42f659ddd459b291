package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"speakertag/internal/config"
	"speakertag/internal/logging"
	"speakertag/internal/speakermatch"
	"speakertag/internal/store"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	envFileFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag, envFileFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		envFileFlag:  envFileFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path, envFile string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if c.envFileFlag != nil {
			envFile = strings.TrimSpace(*c.envFileFlag)
		}
		if err := config.LoadEnv(envFile); err != nil {
			c.configErr = err
			return
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// configSource names the file the config came from, or "defaults".
func (c *commandContext) configSource() string {
	if c.config == nil {
		return ""
	}
	if !c.configSeen {
		return "defaults"
	}
	return c.configPath
}

// loggerValue builds the command logger once. Logger construction failures
// fall back to a discarding logger so output commands still work.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Paths.Database)
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *commandContext) resolver(logger *slog.Logger) (*speakermatch.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return speakermatch.NewResolver(policyFromConfig(cfg.Resolver), logger), nil
}

func policyFromConfig(r config.Resolver) speakermatch.Policy {
	return speakermatch.Policy{
		ReviewThreshold:       r.ReviewThreshold,
		MinUtterances:         r.MinUtterances,
		EliminationConfidence: r.EliminationConfidence,
		CountWeight:           r.CountWeight,
		ConfidenceWeight:      r.ConfidenceWeight,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
