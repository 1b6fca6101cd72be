// Package policy implements the naming rule engine: a data-driven table
// of prefix rules keyed by declaration category, and a pure checker that
// maps declarations to verdicts.
package policy
