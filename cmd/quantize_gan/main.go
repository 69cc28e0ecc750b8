package main

import "context"
import "math/rand"
import "os"

import "github.com/pkg/errors"
import "github.com/spf13/cobra"
import "github.com/spf13/pflag"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/config"
import "github.com/neurlang/gantrainer/datasets"
import "github.com/neurlang/gantrainer/datasets/cifar"
import "github.com/neurlang/gantrainer/datasets/mnist"
import "github.com/neurlang/gantrainer/device"
import "github.com/neurlang/gantrainer/gan"
import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/machine"
import "github.com/neurlang/gantrainer/net/feedforward"
import "github.com/neurlang/gantrainer/ptq"

type options struct {
	configPath string
	dataSource string
	dataDir    string
	network    string
	batches    int
	quantizer  string
	out        string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "quantize_gan",
		Short:        "Compute quantization thresholds of a trained GAN network",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.Flags(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file")
	f.StringVarP(&o.dataSource, "dataSource", "d", "", "mnist or cifar")
	f.StringVar(&o.dataDir, "dataDir", "", "directory holding the dataset files")
	f.StringVar(&o.network, "network", "generator", "generator or discriminator")
	f.IntVar(&o.batches, "batches", 10, "number of calibration batches")
	f.StringVar(&o.quantizer, "quantizer", ptq.AbsmaxName, "abs_max, channel_wise_abs_max or hist")
	f.StringVar(&o.out, "out", "thresholds.yaml", "output file")
	return cmd
}

func settings(f *pflag.FlagSet, o options) (config.Config, error) {
	c, err := config.LoadFile(o.configPath)
	if err != nil {
		return c, err
	}
	q := &c.Quantization
	if f.Changed("dataSource") {
		c.Data.Source = o.dataSource
	}
	if f.Changed("dataDir") {
		c.Data.Dir = o.dataDir
	}
	if f.Changed("network") {
		q.Network = o.network
	}
	if f.Changed("batches") {
		q.Batches = o.batches
	}
	if f.Changed("quantizer") {
		q.Quantizer = o.quantizer
	}
	if f.Changed("out") {
		q.Out = o.out
	}
	if q.Batches <= 0 {
		return c, errors.Errorf("batches must be positive, got %d", q.Batches)
	}
	return c, nil
}

// calibration feeds a network one batch of inputs.
type calibration func(batch int) (*tensor.Dense, error)

func network(c config.Config, src datasets.Source, threads int) (*feedforward.FeedforwardNetwork, calibration, error) {
	arch := c.Model
	arch.SampleDim = src.SampleDim()
	rng := rand.New(rand.NewSource(c.Training.Seed))
	ckpt := gan.WeightsCheckpointer{Dir: c.Training.CheckpointDir}

	switch c.Quantization.Network {
	case machine.GeneratorName, "generator":
		net, err := arch.NewGenerator()
		if err != nil {
			return nil, nil, err
		}
		if err := net.ReadCompressedWeightsFromFile(ckpt.CheckpointPath(machine.GeneratorName)); err != nil {
			return nil, nil, err
		}
		// noise only, no dataset needed
		empty, err := datasets.New(arch.SampleDim, make([]float32, arch.SampleDim))
		if err != nil {
			return nil, nil, err
		}
		s := datasets.NewSampler(empty, arch.NoiseDim, rng)
		return net, func(batch int) (*tensor.Dense, error) { return s.Noise(batch), nil }, nil

	case machine.DiscriminatorName, "discriminator":
		net, err := arch.NewDiscriminator()
		if err != nil {
			return nil, nil, err
		}
		if err := net.ReadCompressedWeightsFromFile(ckpt.CheckpointPath(machine.DiscriminatorName)); err != nil {
			return nil, nil, err
		}
		var data *datasets.Dataset
		switch src {
		case datasets.MNIST:
			data, err = mnist.Load(c.Data.Dir, threads)
		case datasets.CIFAR:
			data, err = cifar.Load(c.Data.Dir, threads)
		}
		if err != nil {
			return nil, nil, err
		}
		s := datasets.NewSampler(data, arch.NoiseDim, rng)
		return net, s.Real, nil
	}
	return nil, nil, errors.Errorf("unknown network %q", c.Quantization.Network)
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
		return err
	}
	q := c.Quantization
	quantizer, err := ptq.NewQuantizer(q.Quantizer, q.Bits, q.Bins, q.Percentile)
	if err != nil {
		return err
	}
	calibrator, err := ptq.New(ptq.Config{Activation: quantizer, Weight: quantizer.Clone()}, nil)
	if err != nil {
		return err
	}

	net, next, err := network(c, src, device.Probe().Workers())
	if err != nil {
		return err
	}
	model, err := calibrator.Quantize(net, false)
	if err != nil {
		return err
	}
	for i := 0; i < q.Batches; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		x, err := next(c.Training.BatchSize)
		if err != nil {
			return err
		}
		if _, err := model.Forward(x); err != nil {
			return err
		}
	}
	_, report, err := calibrator.Convert(model)
	if err != nil {
		return err
	}

	out, err := os.Create(q.Out)
	if err != nil {
		return err
	}
	if err := report.WriteYAML(out); err != nil {
		out.Close()
		return err
	}
	logging.Info("thresholds written", logging.Quantization, "network", q.Network, "layers", len(report), "quantizer", quantizer.Name(), "out", q.Out)
	return out.Close()
}
