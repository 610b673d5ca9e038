// Package trainer drives the optimization of a log-linear model: it turns an
// expression graph into an objective function, feeds objective values and
// gradients to a stepper until convergence or the iteration cap, and writes
// crash-resilient checkpoints of the parameters throughout.
package trainer
