package main

import "math/rand"
import "os"
import "path/filepath"
import "testing"

import "github.com/pkg/errors"
import "github.com/spf13/cobra"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/machine"
import "github.com/neurlang/gantrainer/ptq"
import "github.com/neurlang/gantrainer/trainer"

func execute(t *testing.T, cmd *cobra.Command) error {
	t.Setenv("GAN_LOG__LEVEL", logging.LevelOff)
	return logging.WithNoopLogger(cmd.Execute)
}

func TestSettingsFlags(t *testing.T) {
	cmd := newCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--network", "discriminator", "--batches", "3", "--quantizer", "hist"}))
	c, err := settings(cmd.Flags(), options{network: "discriminator", batches: 3, quantizer: "hist"})
	require.NoError(t, err)
	assert.Equal(t, "discriminator", c.Quantization.Network)
	assert.Equal(t, 3, c.Quantization.Batches)
	assert.Equal(t, "hist", c.Quantization.Quantizer)
}

func TestUnsupportedQuantizer(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"-d", "mnist", "--quantizer", "kl"})
	err := execute(t, cmd)
	assert.True(t, errors.Is(err, ptq.ErrUnsupportedQuantizer))
}

func TestQuantizeGenerator(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "gan.yaml")
	require.NoError(t, os.WriteFile(conf, []byte(`
training:
  checkpoint_dir: `+dir+`
  batch_size: 4
model:
  noise_dim: 3
  generator_hidden: [5]
`), 0o644))

	a := machine.Architecture{NoiseDim: 3, SampleDim: 784, GeneratorHidden: []int{5}}
	g, err := a.NewGenerator()
	require.NoError(t, err)
	g.Init(rand.New(rand.NewSource(1)))
	require.NoError(t, trainer.Checkpoint(g, filepath.Join(dir, "gen.json.t.lzw")))

	out := filepath.Join(dir, "thresholds.yaml")
	cmd := newCommand()
	cmd.SetArgs([]string{"--config", conf, "-d", "mnist", "--network", "generator", "--batches", "2", "--out", out})
	require.NoError(t, execute(t, cmd))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gen.fc0")
	assert.Contains(t, string(data), "gen.out")
}
