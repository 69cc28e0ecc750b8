// Package gan runs adversarial training: per minibatch it scores the real,
// generated and generator batches, lets the scheduler pick the network to
// update, trains it and copies the updated parameters into the other machines.
package gan
