// Package main scores examples with a trained log-linear model. For every
// example it prints the exact value and the best derivation found under the
// max-times semiring; features outside the model's support read as zero.
package main
