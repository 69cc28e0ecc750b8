// Package main trains a generative adversarial network on MNIST or CIFAR-10.
// Each minibatch updates either the discriminator or the generator, chosen by
// comparing their losses with a bounded streak. An 8x8 grid of generated
// samples is saved after every pass to ./<dataSource>_samples/.
//
//	train_gan --dataSource mnist --useGpu 0
package main
