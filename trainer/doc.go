// Package trainer drives the training lifecycle of one gradient machine:
// passes made of minibatches, each minibatch a forward, backward and optimizer
// step, with per-pass cost statistics and weight checkpoints.
package trainer
