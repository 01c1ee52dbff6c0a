// Package commands implements the numctl command tree: offline numerology,
// compatibility and chart calculations, synthetic dataset generation, and
// bulk ingestion into the configured stores.
package commands
