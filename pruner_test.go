package archprune

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"git.fractalqb.de/fractalqb/archprune/mkfs"
	"git.fractalqb.de/fractalqb/archprune/prunekore"
	"git.fractalqb.de/fractalqb/testerr"
)

const testTarget = "esp32p4"

var lvglTestFiles = []string{
	"src/draw/sw/blend/neon/lv_blend_neon.S",
	"src/draw/sw/blend/neon/lv_blend_neon.h",
	"src/draw/sw/blend/neon/lv_draw_sw_blend_neon_to_rgb565.c",
	"src/draw/sw/arm2d/lv_draw_sw_arm2d.h",
	"src/draw/sw/arm2d/lv_draw_sw_helium.h",
	"foo_helium.S",
	"bar.S",
	"neon_notes.txt",
	"src/misc/LV_NEON_memcpy.S",
	"src/draw/sw/blend/lv_draw_sw_blend.c",
}

func testLibrary(t *testing.T) (prj, lib string) {
	prj = t.TempDir()
	lib = DefaultLayout().LibraryRoot(LibraryTarget{
		ProjectRoot:   prj,
		BuildTargetID: testTarget,
	})
	mkTree(t, lib, lvglTestFiles...)
	return prj, lib
}

func testPruner(t *testing.T, cfg Config) *Pruner {
	return testerr.Shall1(New(cfg, TestTracer{t})).BeNil(t)
}

func TestPruner_PruneSources(t *testing.T) {
	prj, lib := testLibrary(t)
	p := testPruner(t, Config{})

	rep := testerr.Shall1(p.PruneSources(prj, testTarget)).BeNil(t)
	if !rep.Installed {
		t.Fatal("library not found")
	}
	testerr.Shall(rep.Err()).BeNil(t)
	// 2 directories, foo_helium.S, LV_NEON_memcpy.S
	if n := rep.Removed(); n != 4 {
		t.Errorf("removed %d entries, want 4", n)
	}
	for _, gone := range []string{
		"src/draw/sw/blend/neon",
		"src/draw/sw/arm2d",
		"foo_helium.S",
		"src/misc/LV_NEON_memcpy.S",
	} {
		if exists(t, lib, gone) {
			t.Errorf("%s not removed", gone)
		}
	}
	for _, kept := range []string{
		"bar.S",
		"neon_notes.txt",
		"src/draw/sw/blend/lv_draw_sw_blend.c",
	} {
		if !exists(t, lib, kept) {
			t.Errorf("%s removed", kept)
		}
	}

	t.Run("idempotent", func(t *testing.T) {
		rep := testerr.Shall1(p.PruneSources(prj, testTarget)).BeNil(t)
		if !rep.Installed {
			t.Error("library vanished")
		}
		if n := rep.Removed(); n != 0 {
			t.Errorf("second run removed %d", n)
		}
		if len(rep.Results) != 0 {
			t.Errorf("second run matched %v", rep.Results)
		}
	})
}

func TestPruner_PruneSources_allDirRules(t *testing.T) {
	prj := t.TempDir()
	lib := DefaultLayout().LibraryRoot(LibraryTarget{ProjectRoot: prj, BuildTargetID: testTarget})
	pol := DefaultPolicy()
	for _, d := range pol.Dirs {
		mkTree(t, lib, string(d)+"/x.c", string(d)+"/sub/y.h")
	}
	p := testPruner(t, Config{})
	rep := testerr.Shall1(p.PruneSources(prj, testTarget)).BeNil(t)
	if n := rep.Removed(); n != len(pol.Dirs) {
		t.Errorf("removed %d, want %d", n, len(pol.Dirs))
	}
	for _, d := range pol.Dirs {
		if exists(t, lib, string(d)) {
			t.Errorf("%s survived", d)
		}
	}
	if !exists(t, lib, "src/draw/sw/blend") {
		t.Error("parent of excluded dirs removed")
	}
}

func TestPruner_PruneSources_notInstalled(t *testing.T) {
	p := testPruner(t, Config{})
	rep := testerr.Shall1(p.PruneSources(t.TempDir(), testTarget)).BeNil(t)
	if rep.Installed {
		t.Error("missing library installed")
	}
	if n := rep.Removed(); n != 0 {
		t.Errorf("removed %d from missing library", n)
	}
}

func TestPruner_PruneSources_partialFailure(t *testing.T) {
	prj, lib := testLibrary(t)
	p := testPruner(t, Config{})
	locked := filepath.Join(lib, "foo_helium.S")
	errLocked := errors.New("sharing violation")
	p.rm.RemoveFile = func(path string) error {
		if path == locked {
			return errLocked
		}
		return os.Remove(path)
	}
	rep := testerr.Shall1(p.PruneSources(prj, testTarget)).BeNil(t)
	if n := rep.Removed(); n != 3 {
		t.Errorf("removed %d, want 3", n)
	}
	if err := rep.Err(); !errors.Is(err, errLocked) {
		t.Errorf("unexpected report error %v", err)
	}
	if !exists(t, lib, "foo_helium.S") {
		t.Error("locked file removed")
	}
	for _, gone := range []string{"src/draw/sw/blend/neon", "src/draw/sw/arm2d", "src/misc/LV_NEON_memcpy.S"} {
		if exists(t, lib, gone) {
			t.Errorf("%s not removed", gone)
		}
	}
}

func TestPruner_PruneSources_dryRun(t *testing.T) {
	prj, lib := testLibrary(t)
	p := testPruner(t, Config{DryRun: true})
	rep := testerr.Shall1(p.PruneSources(prj, testTarget)).BeNil(t)
	if !rep.DryRun || rep.Removed() != 4 {
		t.Errorf("dry run report: %s", rep)
	}
	for _, f := range lvglTestFiles {
		if !exists(t, lib, f) {
			t.Errorf("dry run removed %s", f)
		}
	}
}

var buildTestFiles = []string{
	"libb3c/lvgl/src/draw/sw/blend/neon/lv_blend_neon.S.o",
	"libb3c/lvgl/src/draw/sw/blend/neon/lv_draw_sw_blend_neon_to_rgb565.c.o",
	"libb3c/lvgl/src/draw/sw/blend/lv_draw_sw_blend.c.o",
	"libb3c/lvgl/src/misc/LV_NEON_memcpy.S.o",
	"libb3c/lvgl/foo_helium.S",
	"lib9f0/M5GFX/M5GFX_neon.cpp.o",
	"src/main.cpp.o",
}

func TestPruner_PruneCompiledArtifacts_fine(t *testing.T) {
	build := t.TempDir()
	mkTree(t, build, buildTestFiles...)
	p := testPruner(t, Config{})
	rep := testerr.Shall1(p.PruneCompiledArtifacts(build)).BeNil(t)
	if n := rep.Removed(); n != 3 {
		t.Errorf("removed %d, want 3", n)
	}
	for _, gone := range buildTestFiles[:2] {
		if exists(t, build, gone) {
			t.Errorf("%s not removed", gone)
		}
	}
	if exists(t, build, buildTestFiles[3]) {
		t.Errorf("%s not removed", buildTestFiles[3])
	}
	for _, kept := range []string{
		"libb3c/lvgl/src/draw/sw/blend/lv_draw_sw_blend.c.o",
		"libb3c/lvgl/foo_helium.S",
		"lib9f0/M5GFX/M5GFX_neon.cpp.o",
		"src/main.cpp.o",
	} {
		if !exists(t, build, kept) {
			t.Errorf("%s removed", kept)
		}
	}
	rep = testerr.Shall1(p.PruneCompiledArtifacts(build)).BeNil(t)
	if n := rep.Removed(); n != 0 {
		t.Errorf("second run removed %d", n)
	}
}

func TestPruner_PruneCompiledArtifacts_coarse(t *testing.T) {
	build := t.TempDir()
	mkTree(t, build, buildTestFiles...)
	p := testPruner(t, Config{Objects: CoarseObjects})
	rep := testerr.Shall1(p.PruneCompiledArtifacts(build)).BeNil(t)
	if n := rep.Removed(); n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	if exists(t, build, "libb3c/lvgl") {
		t.Error("library object dir not removed")
	}
	for _, kept := range []string{"libb3c", "lib9f0/M5GFX/M5GFX_neon.cpp.o", "src/main.cpp.o"} {
		if !exists(t, build, kept) {
			t.Errorf("%s removed", kept)
		}
	}
}

func TestPruner_PruneCompiledArtifacts_noBuild(t *testing.T) {
	p := testPruner(t, Config{})
	rep := testerr.Shall1(p.PruneCompiledArtifacts(filepath.Join(t.TempDir(), ".pio", "build"))).BeNil(t)
	if rep.Installed || rep.Removed() != 0 {
		t.Errorf("unexpected report %s", rep)
	}
}

func TestNew_invalid(t *testing.T) {
	_, err := New(Config{Policy: Policy{Dirs: []DirectoryRule{".."}}}, TestTracer{t})
	if err == nil {
		t.Error("invalid policy accepted")
	}
	testerr.Shall1(New(Config{Objects: ObjectStrategy(7)}, TestTracer{t})).
		Check(t, testerr.Msg("illegal object strategy 7"))
}

func TestParseObjectStrategy(t *testing.T) {
	for s, want := range map[string]ObjectStrategy{
		"":       FineObjects,
		"fine":   FineObjects,
		"coarse": CoarseObjects,
	} {
		if got := testerr.Shall1(ParseObjectStrategy(s)).BeNil(t); got != want {
			t.Errorf("'%s' parsed as %s", s, got)
		}
	}
	testerr.Shall1(ParseObjectStrategy("all")).
		Check(t, testerr.Msg("illegal object strategy 'all'"))
	if s := ObjectStrategy(3).String(); s != "ObjectStrategy(3)" {
		t.Errorf("unexpected string '%s'", s)
	}
}

func TestPruner_defaults(t *testing.T) {
	p := testPruner(t, Config{Vars: Vars{BuildTarget: "$BOARD"}})
	cfg := p.Config()
	if cfg.Vars != (Vars{ProjectDir: "$PROJECT_DIR", BuildTarget: "$BOARD", BuildDir: "$BUILD_DIR"}) {
		t.Errorf("unexpected vars %+v", cfg.Vars)
	}
	if cfg.Policy.IsZero() {
		t.Error("zero policy not replaced")
	}
	if p.Trace().Stage() != prunekore.Stage("") {
		t.Error("pruner trace has a stage")
	}
}

func TestPruner_PruneSources_incompleteTarget(t *testing.T) {
	prj, _ := testLibrary(t)
	stray := filepath.Join(prj, ".pio", "libdeps", "lvgl")
	mkTree(t, stray, lvglTestFiles[0])
	p := testPruner(t, Config{})
	testerr.Shall1(p.PruneSources(prj, "")).
		Check(t, testerr.Msg("locate library: no build target"))
	testerr.Shall1(p.PruneSources("", testTarget)).
		Check(t, testerr.Msg("locate library: no project root"))
	if !exists(t, stray, lvglTestFiles[0]) {
		t.Error("pruned library outside of target dir")
	}
	testerr.Shall1(p.PruneCompiledArtifacts("")).
		Check(t, testerr.Msg("no build dir"))
}

func TestPruner_PruneSources_uncheckedDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("cannot lock directories")
	}
	prj, lib := testLibrary(t)
	locked := filepath.Join(lib, "src", "draw", "sw", "blend")
	testerr.Shall(os.Chmod(locked, 0)).BeNil(t)
	defer os.Chmod(locked, 0777)

	p := testPruner(t, Config{})
	rep := testerr.Shall1(p.PruneSources(prj, testTarget)).BeNil(t)
	// helium, neon and arm2d below blend cannot be checked
	failed := rep.Failed()
	if len(failed) != 3 {
		t.Fatalf("%d failed results, want 3: %v", len(failed), failed)
	}
	for _, f := range failed {
		if !f.Dir || !mkfs.Within(f.Path, filepath.Join("src", "draw", "sw", "blend")) {
			t.Errorf("unexpected failed entry %s", f.Entry)
		}
	}
	if rep.Err() == nil {
		t.Error("report has no error")
	}
	// arm2d dir, foo_helium.S, LV_NEON_memcpy.S
	if n := rep.Removed(); n != 3 {
		t.Errorf("removed %d, want 3", n)
	}
}

func TestNew_badObjectDirs(t *testing.T) {
	_, err := New(Config{Layout: Layout{ObjectDirs: "lib["}}, TestTracer{t})
	if !errors.Is(err, filepath.ErrBadPattern) {
		t.Errorf("unexpected error %v", err)
	}
}
