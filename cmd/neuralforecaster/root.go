package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aouyang1/go-neuralforecaster/feature"
	"github.com/aouyang1/go-neuralforecaster/forecast/options"
	"github.com/aouyang1/go-neuralforecaster/models"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "NEURALFORECASTER"
	configName = ".neuralforecaster"

	defaultWeightThreshold = 0.1
)

var ErrUnknownSeasonality = errors.New("unknown seasonality")

// Config holds the resolved configuration from the config file, environment and flags
type Config struct {
	LogLevel string `mapstructure:"log-level"`
	Profile  string `mapstructure:"profile"`

	Data     string `mapstructure:"data"`
	Events   string `mapstructure:"events"`
	Holidays string `mapstructure:"holidays"`
	ModelOut string `mapstructure:"model-out"`
	Plot     string `mapstructure:"plot"`

	Freq         time.Duration `mapstructure:"freq"`
	Solver       string        `mapstructure:"solver"`
	Epochs       int           `mapstructure:"epochs"`
	BatchSize    int           `mapstructure:"batch-size"`
	LearningRate float64       `mapstructure:"learning-rate"`
	Seed         uint64        `mapstructure:"seed"`
	Growth       string        `mapstructure:"growth"`
	Seasonality  []string      `mapstructure:"seasonality"`
	Normalize    string        `mapstructure:"normalize"`

	EventRegularization   float64 `mapstructure:"event-regularization"`
	HolidayRegularization float64 `mapstructure:"holiday-regularization"`
	LowerWindow           int     `mapstructure:"lower-window"`
	UpperWindow           int     `mapstructure:"upper-window"`
	WeightThreshold       float64 `mapstructure:"weight-threshold"`

	Out           string   `mapstructure:"out"`
	EventsOut     string   `mapstructure:"events-out"`
	Years         []int    `mapstructure:"years"`
	Overrides     []string `mapstructure:"override"`
	OverrideValue float64  `mapstructure:"override-value"`
	Start         string   `mapstructure:"start"`
	Periods       int      `mapstructure:"periods"`
	Country       string   `mapstructure:"country"`
}

// setupFunc loads the Config of a command. The returned stop func must run once the command
// finishes, whether or not it fails.
type setupFunc func(cmd *cobra.Command) (cfg *Config, stop func(), err error)

// Options converts the configuration into forecast options
func (c *Config) Options() (*options.Options, error) {
	opt := options.NewDefaultOptions()
	opt.Solver = c.Solver
	opt.Epochs = c.Epochs
	opt.BatchSize = c.BatchSize
	opt.LearningRate = c.LearningRate
	opt.Seed = c.Seed
	opt.Growth = c.Growth
	opt.Normalize = c.Normalize

	opt.SeasonalityOptions = options.NoSeasonalityOptions()
	for _, name := range c.Seasonality {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case options.LabelSeasDaily:
			opt.SeasonalityOptions.SeasonalityConfigs = append(opt.SeasonalityOptions.SeasonalityConfigs,
				options.NewDailySeasonalityConfig(options.DefaultDailyOrders))
		case options.LabelSeasWeekly:
			opt.SeasonalityOptions.SeasonalityConfigs = append(opt.SeasonalityOptions.SeasonalityConfigs,
				options.NewWeeklySeasonalityConfig(options.DefaultWeeklyOrders))
		case options.LabelSeasYearly:
			opt.SeasonalityOptions.SeasonalityConfigs = append(opt.SeasonalityOptions.SeasonalityConfigs,
				options.NewYearlySeasonalityConfig(options.DefaultYearlyOrders))
		case "", "off":
		default:
			return nil, fmt.Errorf("%q, %w", name, ErrUnknownSeasonality)
		}
	}
	return opt.Validate()
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "neuralforecaster",
		Short: "Fit forecasts with regularized event and holiday regressors.",
		Long: `neuralforecaster decomposes a time series into trend, seasonality and event components
where every event and holiday regressor carries its own L1 regularization.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("profile", "", "Enable cpu profiling and write the profile to this directory")

	setup := func(cmd *cobra.Command) (*Config, func(), error) {
		cfg, err := loadConfig(v, cmd)
		if err != nil {
			return nil, nil, err
		}
		if err := setupLogging(cfg.LogLevel); err != nil {
			return nil, nil, err
		}
		stop := func() {}
		if cfg.Profile != "" {
			stop = profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile), profile.Quiet).Stop
		}
		return cfg, stop, nil
	}

	rootCmd.AddCommand(newFitCmd(setup), newSimulateCmd(setup))
	return rootCmd
}

// loadConfig merges the config file, NEURALFORECASTER_* environment variables and flags of the
// command into a Config
func loadConfig(v *viper.Viper, cmd *cobra.Command) (*Config, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("unable to bind flags, %w", err)
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config, %w", err)
	}
	return cfg, nil
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q, %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// addModelFlags registers the training flags shared by commands that fit a forecast
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("freq", 0, "Sampling interval of the data (0 = infer)")
	cmd.Flags().String("solver", options.SolverMiniBatch, "Solver: minibatch or coordinate_descent or ols")
	cmd.Flags().Int("epochs", models.DefaultEpochs, "Number of training epochs")
	cmd.Flags().Int("batch-size", models.DefaultBatchSize, "Number of observations per minibatch")
	cmd.Flags().Float64("learning-rate", models.DefaultLearningRate, "Learning rate in (0, 1]")
	cmd.Flags().Uint64("seed", 0, "Seed of the minibatch shuffling")
	cmd.Flags().String("growth", feature.GrowthLinear, "Growth: off or linear")
	cmd.Flags().StringSlice("seasonality", []string{options.LabelSeasDaily, options.LabelSeasWeekly, options.LabelSeasYearly}, "Seasonalities to fit: daily, weekly, yearly or off")
	cmd.Flags().String("normalize", options.NormalizeMinMax, "Target normalization: minmax or standardize or off")
	cmd.Flags().Float64("event-regularization", 0, "Regularization of every user defined event")
	cmd.Flags().Float64("holiday-regularization", 0, "Regularization of every country holiday")
	cmd.Flags().Int("lower-window", 0, "Days before each event or holiday to model (non-positive)")
	cmd.Flags().Int("upper-window", 0, "Days after each event or holiday to model (non-negative)")
	cmd.Flags().Float64("weight-threshold", defaultWeightThreshold, "Weights below this magnitude are dimmed")
}
