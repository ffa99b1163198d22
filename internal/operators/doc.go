// Package operators provides encoding-independent pipeline stages:
// evaluators, creators, selectors, terminators, interceptors and observers.
//
// Every operator here works for any genotype type. Encoding-specific
// creators, mutators and crossovers live under internal/encoding.
package operators
