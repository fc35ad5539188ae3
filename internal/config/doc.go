// Package config provides configuration structures and utilities for pagerank.
// It holds the estimator parameters, output preferences and the optional
// YAML file that supplies per-corpus defaults.
package config
