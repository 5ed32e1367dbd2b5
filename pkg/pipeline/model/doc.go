// Package model provides the data structures shared by the pipeline package and its options.
// It defines the stage descriptors and the hook contract pipeline options implement.
package model
