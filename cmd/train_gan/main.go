package main

import "context"
import "math/rand"
import "os"
import "os/signal"
import "path/filepath"
import "syscall"

import "github.com/pkg/errors"
import "github.com/spf13/cobra"
import "github.com/spf13/pflag"

import "github.com/neurlang/gantrainer/config"
import "github.com/neurlang/gantrainer/datasets"
import "github.com/neurlang/gantrainer/datasets/cifar"
import "github.com/neurlang/gantrainer/datasets/mnist"
import "github.com/neurlang/gantrainer/device"
import "github.com/neurlang/gantrainer/gan"
import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/machine"
import "github.com/neurlang/gantrainer/progress"
import "github.com/neurlang/gantrainer/trainer"

type options struct {
	configPath string
	dataSource string
	dataDir    string
	useGpu     int
	resume     bool
	pgo        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "train_gan",
		Short:        "Train a GAN on MNIST or CIFAR-10",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.Flags(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file")
	f.StringVarP(&o.dataSource, "dataSource", "d", "", "mnist or cifar")
	f.StringVar(&o.dataDir, "dataDir", "", "directory holding the dataset files")
	f.IntVar(&o.useGpu, "useGpu", 1, "0 or 1")
	f.BoolVar(&o.resume, "resume", false, "load the last checkpoint before training")
	f.BoolVar(&o.pgo, "pgo", false, "write a CPU profile to default.pgo")
	return cmd
}

// settings layers command line flags over the loaded config.
func settings(f *pflag.FlagSet, o options) (config.Config, error) {
	c, err := config.LoadFile(o.configPath)
	if err != nil {
		return c, err
	}
	if f.Changed("dataSource") {
		c.Data.Source = o.dataSource
	}
	if f.Changed("dataDir") {
		c.Data.Dir = o.dataDir
	}
	if f.Changed("useGpu") {
		c.Training.UseGpu = o.useGpu
	}
	if c.Training.SamplesDir == "" {
		c.Training.SamplesDir = "./" + c.Data.Source + "_samples"
	}
	return c, nil
}

func loadDataset(src datasets.Source, dir string, threads int) (*datasets.Dataset, error) {
	switch src {
	case datasets.MNIST:
		return mnist.Load(dir, threads)
	case datasets.CIFAR:
		return cifar.Load(dir, threads)
	}
	return nil, errors.Wrapf(datasets.ErrUnsupportedDataSource, "%q", src)
}

func run(ctx context.Context, f *pflag.FlagSet, o options) error {
	c, err := settings(f, o)
	if err != nil {
		return err
	}
	if err := logging.Setup(os.Stderr, c.Log.Level, c.Log.Format); err != nil {
		return err
	}
	src, err := datasets.ParseSource(c.Data.Source)
	if err != nil {
		logging.Error("bad data source", logging.Config, "error", err)
		return err
	}
	dev, err := device.Select(c.Training.UseGpu, device.Probe())
	if err != nil {
		return err
	}
	if o.pgo {
		stopProfile, err := startProfile("default.pgo")
		if err != nil {
			return err
		}
		defer stopProfile()
	}

	runID := progress.NewRunID()
	logging.Info("starting run", logging.System, "run", runID, "source", src, "samples", c.Training.SamplesDir)

	data, err := loadDataset(src, c.Data.Dir, dev.Workers())
	if err != nil {
		return err
	}

	arch := c.Model
	arch.SampleDim = src.SampleDim()
	c.Model = arch
	rng := rand.New(rand.NewSource(c.Training.Seed))
	m, err := machine.Build(arch, rng)
	if err != nil {
		return err
	}

	checkpoints := gan.WeightsCheckpointer{
		Dir: c.Training.CheckpointDir,
		Networks: map[string]trainer.Weights{
			machine.GeneratorName:     m.Generator.Head().(trainer.Weights),
			machine.DiscriminatorName: m.DiscriminatorTraining.Body().(trainer.Weights),
		},
	}
	// the initial sync copies out of the generator trainer, so resume into it
	resumeInto := map[string]trainer.Weights{
		machine.GeneratorName:     m.GeneratorTraining.Head().(trainer.Weights),
		machine.DiscriminatorName: m.GeneratorTraining.Body().(trainer.Weights),
	}
	for name, net := range resumeInto {
		if _, err := trainer.Resume(net, o.resume, checkpoints.CheckpointPath(name)); err != nil {
			return err
		}
	}
	if err := saveSettings(c); err != nil {
		return err
	}

	disTrainer, err := trainer.New("dis", m.DiscriminatorTraining, c.Optimizer)
	if err != nil {
		return err
	}
	genTrainer, err := trainer.New("gen", m.GeneratorTraining, c.Optimizer)
	if err != nil {
		return err
	}

	reporter, err := newReporter(ctx, c.Progress, runID)
	if err != nil {
		return err
	}
	defer reporter.Close()

	loop := &gan.Loop{
		Options: gan.Options{
			Passes:         c.Training.Passes,
			BatchesPerPass: c.Training.BatchesPerPass,
			BatchSize:      c.Training.BatchSize,
			MaxStreak:      c.Training.MaxStreak,
			LogPeriod:      c.Training.LogPeriod,
			RunID:          runID,
		},
		Sampler:              datasets.NewSampler(data, arch.NoiseDim, rng),
		Discriminator:        m.DiscriminatorTraining,
		GeneratorTraining:    m.GeneratorTraining,
		Generator:            m.Generator,
		DiscriminatorTrainer: disTrainer,
		GeneratorTrainer:     genTrainer,
		Samples:              gan.GridWriter{Dir: c.Training.SamplesDir},
		Checkpoints:          checkpoints,
		Reporter:             reporter,
	}
	sum, err := loop.Run(ctx)
	logging.Info("run finished", logging.System, "run", runID,
		"passes", sum.Passes, "batches", sum.Batches,
		"dis_updates", sum.DiscriminatorUpdates, "gen_updates", sum.GeneratorUpdates,
		"skipped", sum.Skipped, "state", sum.State)
	return err
}

func newReporter(ctx context.Context, c config.ProgressConfig, runID string) (progress.Reporter, error) {
	reporters := progress.Multi{progress.LogReporter{}}
	if c.NatsURL == "" {
		return reporters, nil
	}
	conn, err := progress.ConnectNats(ctx, c.NatsURL, "train_gan-"+runID, c.MaxRetries)
	if err != nil {
		return nil, err
	}
	return append(reporters, progress.NewNatsReporter(conn, c.Subject)), nil
}

// saveSettings records the effective config next to the checkpoints.
func saveSettings(c config.Config) error {
	if err := os.MkdirAll(c.Training.CheckpointDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(c.Training.CheckpointDir, "config.yaml"))
	if err != nil {
		return err
	}
	if err := config.Write(c, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
