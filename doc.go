// Package archprune keeps architecture-incompatible sources of a vendored
// library out of a cross build. It was written for LVGL in PlatformIO builds
// for RISC-V targets like the ESP32-P4, where LVGL's ARM Helium, NEON and
// Arm-2D assembly must neither be compiled nor linked.
//
// A [Pruner] runs two passes. The sources pass locates the library in the
// project's dependency cache ([Layout.LibraryRoot]), matches the excluded
// subtrees and files of a [Policy] and removes them. The objects pass removes
// the compiled objects derived from such files from the build directory, either
// selectively ([FineObjects]) or by dropping the library's whole object
// directory ([CoarseObjects]).
//
// Both passes are idempotent and cheap when there is nothing to do. This
// allows [Init] to run them once right away and then again before each of
// the orchestrator's size-check, program-build and library-build stages:
//
//	var stages prunekore.Stages
//	env := prunekore.DefaultEnv(nil)
//	pruner, err := archprune.Init(&stages, env, archprune.Config{}, archprune.DefaultTracer())
//	…
//	err = stages.Run(prunekore.StageBuildProg, env, buildProgram)
//
// A library that is not installed yet is not an error. A file that cannot be
// removed is reported, but never aborts a pass or the build.
package archprune
