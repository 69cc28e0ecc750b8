// Package config layers built-in defaults, an optional YAML file and GAN_
// environment variables into one Config.
package config

import "io"
import "os"
import "strings"

import "github.com/knadh/koanf/parsers/yaml"
import "github.com/knadh/koanf/providers/env"
import "github.com/knadh/koanf/providers/file"
import "github.com/knadh/koanf/providers/structs"
import "github.com/knadh/koanf/v2"
import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/learning"
import "github.com/neurlang/gantrainer/machine"
import "github.com/neurlang/gantrainer/schedule"

// EnvPrefix prefixes environment overrides; "__" separates levels,
// e.g. GAN_TRAINING__BATCH_SIZE.
const EnvPrefix = "GAN_"

type Config struct {
	Data         DataConfig               `koanf:"data"`
	Training     TrainingConfig           `koanf:"training"`
	Model        machine.Architecture     `koanf:"model"`
	Optimizer    learning.HyperParameters `koanf:"optimizer"`
	Log          LogConfig                `koanf:"log"`
	Progress     ProgressConfig           `koanf:"progress"`
	Quantization QuantizationConfig       `koanf:"quantization"`
}

type DataConfig struct {
	Source string `koanf:"source"`
	Dir    string `koanf:"dir"`
}

type TrainingConfig struct {
	Passes         int    `koanf:"passes"`
	BatchesPerPass int    `koanf:"batches_per_pass"`
	BatchSize      int    `koanf:"batch_size"`
	MaxStreak      int    `koanf:"max_streak"`
	LogPeriod      int    `koanf:"log_period"`
	Seed           int64  `koanf:"seed"`
	SamplesDir     string `koanf:"samples_dir"` // defaults to ./<source>_samples
	CheckpointDir  string `koanf:"checkpoint_dir"`
	UseGpu         int    `koanf:"use_gpu"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type ProgressConfig struct {
	NatsURL    string `koanf:"nats_url"` // empty disables publishing
	Subject    string `koanf:"subject"`
	MaxRetries uint64 `koanf:"max_retries"`
}

type QuantizationConfig struct {
	Network    string  `koanf:"network"`
	Batches    int     `koanf:"batches"`
	Quantizer  string  `koanf:"quantizer"`
	Bits       int     `koanf:"bits"`
	Bins       int     `koanf:"bins"`
	Percentile float64 `koanf:"percentile"`
	Out        string  `koanf:"out"`
}

// Default returns the image GAN settings. The data source has no default.
func Default() Config {
	return Config{
		Data: DataConfig{},
		Training: TrainingConfig{
			Passes:         100,
			BatchesPerPass: 1000,
			BatchSize:      128,
			MaxStreak:      schedule.DefaultMaxStreak,
			LogPeriod:      100,
			Seed:           1,
			CheckpointDir:  "./checkpoints",
			UseGpu:         1,
		},
		Model:     machine.DefaultArchitecture(0),
		Optimizer: learning.DefaultHyperParameters(),
		Log:       LogConfig{Level: "info", Format: "text"},
		Progress:  ProgressConfig{Subject: "gan.progress", MaxRetries: 5},
		Quantization: QuantizationConfig{
			Network:    "generator",
			Batches:    10,
			Quantizer:  "abs_max",
			Bits:       8,
			Bins:       1024,
			Percentile: 0.99999,
			Out:        "thresholds.yaml",
		},
	}
}

// FileProvider reads the YAML file at path.
func FileProvider(path string) koanf.Provider {
	return file.Provider(path)
}

// Load applies defaults, then provider (YAML, may be nil), then the environment.
func Load(provider koanf.Provider) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, "loading defaults")
	}
	if provider != nil {
		if err := k.Load(provider, yaml.Parser()); err != nil {
			return Config{}, errors.Wrap(err, "loading config")
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil)
	if err != nil {
		return Config{}, errors.Wrap(err, "loading env")
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshalling config")
	}
	return c, c.Validate()
}

// LoadFile is Load with an optional YAML file; an empty path skips the file.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Load(nil)
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, errors.Wrap(err, "config file")
	}
	return Load(FileProvider(path))
}

// Validate checks the training loop settings.
func (c Config) Validate() error {
	t := c.Training
	switch {
	case t.Passes < 0:
		return errors.Errorf("training.passes %d", t.Passes)
	case t.BatchesPerPass <= 0:
		return errors.Errorf("training.batches_per_pass %d", t.BatchesPerPass)
	case t.BatchSize <= 0:
		return errors.Errorf("training.batch_size %d", t.BatchSize)
	case t.MaxStreak < 1:
		return errors.Wrapf(schedule.ErrInvalidMaxStreak, "training.max_streak %d", t.MaxStreak)
	case t.LogPeriod < 0:
		return errors.Errorf("training.log_period %d", t.LogPeriod)
	}
	return nil
}

// Write dumps c as YAML.
func Write(c Config, w io.Writer) error {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return err
	}
	out, err := k.Marshal(yaml.Parser())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
