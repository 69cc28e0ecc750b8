// Package main calibrates a trained GAN network for 8 bit inference. It loads
// the generator or discriminator checkpoint written by train_gan, runs
// calibration batches through it and writes the per-layer thresholds as YAML.
//
//	quantize_gan --dataSource mnist --network discriminator --quantizer hist
package main
