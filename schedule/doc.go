// Package schedule implements the adversarial training scheduler. Each minibatch it
// decides whether the discriminator or the generator is updated, based on the most
// recent losses and a bounded streak of consecutive updates of the same network.
package schedule
