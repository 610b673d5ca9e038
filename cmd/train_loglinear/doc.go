// Package main trains a log-linear model by maximum likelihood. Examples are
// s-expressions over named features, read from a text corpus (optionally lzw
// compressed) or an SQLite example store; the negative log of their
// aggregate plus an L2 penalty is minimized with L-BFGS or fixed-rate
// gradient steps, checkpointing the weights as it goes.
package main
