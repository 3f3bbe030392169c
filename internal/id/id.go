// Package id generates identifiers for timeline runs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// runAlphabet keeps run ids readable in logs and file names.
const runAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const runIDLength = 12

// Generate creates a prefixed unique ID using NanoID, e.g. "run-V1StGXR8_Z5jdHi6B-myT".
// It fails only if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewRunID returns a short lowercase run identifier such as "run_3k9x0q2m7a1z".
func NewRunID() (string, error) {
	id, err := gonanoid.Generate(runAlphabet, runIDLength)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return "run_" + id, nil
}

// MustNewRunID is like NewRunID but panics if generation fails.
func MustNewRunID() string {
	id, err := NewRunID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate run ID: %v", err))
	}
	return id
}
