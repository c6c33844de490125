// Package prunekore implements the core model of archprune: the variable
// environment handed over by the build orchestrator, the trace used to report
// progress, the pre-stage hooks an orchestrator fires and the reports that
// record what a pruning pass removed. It uses idiomatic Go error handling.
// The pruning pipelines themselves are provided by the [archprune] package.
//
// [archprune]: https://pkg.go.dev/git.fractalqb.de/fractalqb/archprune
package prunekore
