package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mo/internal/diag"
	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/scaffold"
	"github.com/roach88/mo/internal/sequence"
	"github.com/roach88/mo/internal/testutil"
	"github.com/roach88/mo/internal/workspace"
)

type fixture struct {
	proj     *testutil.Project
	org      *Organizer
	prompter *testutil.ScriptedPrompter
}

func setup(t *testing.T, tasks manifest.Tasks, answers []bool, opts ...Option) *fixture {
	t.Helper()
	proj := testutil.NewProject(t, "Demo", tasks)
	prompter := testutil.NewScriptedPrompter(answers...)
	ws, err := workspace.NewLocal(proj.Root,
		workspace.WithPrompter(prompter),
		workspace.WithRenameMode(workspace.RenameFS),
		workspace.WithBackupDir(t.TempDir()),
	)
	require.NoError(t, err)

	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(testutil.NewSequenceGenerator("op")),
		WithScaffolder(nil),
	}
	return &fixture{proj: proj, org: New(ws, append(base, opts...)...), prompter: prompter}
}

// describe renders steps without the random part of backup locations.
func describe(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		if s.Kind == StepBackup {
			out[i] = "backup " + s.Path
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprintf("%s %s %s", s.Kind, s.Path, s.To))
	}
	return out
}

func serial(names ...string) manifest.Tasks {
	tasks := manifest.Tasks{}
	for i, n := range names {
		tasks[i+1] = manifest.SerialEntry(n)
	}
	return tasks
}

func slots(kv ...string) manifest.Entry {
	m := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return manifest.ParallelEntry(m)
}

// assertUnchanged checks that a failed operation left both stores alone.
func assertUnchanged(t *testing.T, f *fixture, dirs []string, doc string) {
	t.Helper()
	assert.Equal(t, dirs, f.proj.Dirs())
	assert.Equal(t, doc, f.proj.ReadFile(manifest.DefaultFile))
}

func TestInsert_ShiftsOccupiedSerialOrder(t *testing.T) {
	f := setup(t, serial("prep", "train"), nil)

	res, err := f.org.Insert(context.Background(), "2", "eval")
	require.NoError(t, err)

	assert.Equal(t, "op-1", res.ID)
	assert.Equal(t, []string{
		"backup 2_train",
		"rename 2_train 3_train",
		"create 2_eval",
		"commit Mo.yaml",
	}, describe(res.Steps))
	assert.Equal(t, []string{"1_prep", "2_eval", "3_train"}, f.proj.Dirs())
	assert.Equal(t, serial("prep", "eval", "train"), f.proj.Tasks())
	assert.Empty(t, f.prompter.Asked())
}

func TestInsert_ShiftsParallelGroupsKeepingLetters(t *testing.T) {
	f := setup(t, manifest.Tasks{
		1: manifest.SerialEntry("prep"),
		2: slots("a", "x", "b", "y"),
		3: manifest.SerialEntry("eval"),
	}, nil)

	_, err := f.org.Insert(context.Background(), "2", "clean")
	require.NoError(t, err)

	assert.Equal(t, []string{"1_prep", "2_clean", "3a_x", "3b_y", "4_eval"}, f.proj.Dirs())
	tasks := f.proj.Tasks()
	assert.Equal(t, slots("a", "x", "b", "y"), tasks[3])
	assert.Equal(t, manifest.SerialEntry("eval"), tasks[4])
}

func TestInsert_AppendsWithoutShift(t *testing.T) {
	f := setup(t, serial("prep"), nil)

	res, err := f.org.Insert(context.Background(), "2", "train")
	require.NoError(t, err)

	assert.Equal(t, []string{"create 2_train", "commit Mo.yaml"}, describe(res.Steps))
	assert.Equal(t, serial("prep", "train"), f.proj.Tasks())
}

func TestInsert_IntoEmptyProject(t *testing.T) {
	f := setup(t, manifest.Tasks{}, nil)

	_, err := f.org.Insert(context.Background(), "1", "prep")
	require.NoError(t, err)
	assert.Equal(t, []string{"1_prep"}, f.proj.Dirs())
}

func TestInsert_OutOfRange(t *testing.T) {
	f := setup(t, serial("prep"), nil)
	dirs, doc := f.proj.Dirs(), f.proj.ReadFile(manifest.DefaultFile)

	for _, pos := range []string{"3", "3a", "0"} {
		_, err := f.org.Insert(context.Background(), pos, "late")
		require.Error(t, err, pos)
		assert.True(t, diag.Is(err, diag.PositionOutOfRange), "%s: %v", pos, err)
	}
	assertUnchanged(t, f, dirs, doc)
}

func TestInsert_ConvertsSerialToParallel(t *testing.T) {
	tests := []struct {
		slot    string
		wantDir []string
		want    manifest.Entry
	}{
		{"a", []string{"1_prep", "2a_tune", "2b_train"}, slots("a", "tune", "b", "train")},
		{"b", []string{"1_prep", "2a_train", "2b_tune"}, slots("a", "train", "b", "tune")},
		{"c", []string{"1_prep", "2b_train", "2c_tune"}, slots("b", "train", "c", "tune")},
	}

	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			f := setup(t, serial("prep", "train"), []bool{true})

			_, err := f.org.Insert(context.Background(), "2"+tt.slot, "tune")
			require.NoError(t, err)

			assert.Equal(t, tt.wantDir, f.proj.Dirs())
			tasks := f.proj.Tasks()
			assert.Equal(t, tt.want, tasks[2])
			assert.Equal(t, manifest.SerialEntry("prep"), tasks[1], "other groups are untouched")
			require.Len(t, f.prompter.Asked(), 1)
			assert.Contains(t, f.prompter.Asked()[0], "Convert serial task at 2 to parallel")
		})
	}
}

func TestInsert_ConversionDeclined(t *testing.T) {
	f := setup(t, serial("prep", "train"), []bool{false})
	dirs, doc := f.proj.Dirs(), f.proj.ReadFile(manifest.DefaultFile)

	_, err := f.org.Insert(context.Background(), "2a", "tune")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.ConversionDeclined))
	assertUnchanged(t, f, dirs, doc)
}

func TestInsert_AddsSlotToParallelGroup(t *testing.T) {
	f := setup(t, manifest.Tasks{1: slots("a", "x", "b", "y")}, nil)

	_, err := f.org.Insert(context.Background(), "1c", "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"1a_x", "1b_y", "1c_z"}, f.proj.Dirs())

	_, err = f.org.Insert(context.Background(), "1a", "again")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.DuplicateSlot))
}

func TestInsert_NewParallelGroup(t *testing.T) {
	f := setup(t, serial("prep"), nil)

	_, err := f.org.Insert(context.Background(), "2a", "x")
	require.NoError(t, err)
	assert.Equal(t, slots("a", "x"), f.proj.Tasks()[2])
	assert.Equal(t, []string{"1_prep", "2a_x"}, f.proj.Dirs())
}

func TestInsert_RejectsBadInput(t *testing.T) {
	f := setup(t, serial("prep"), nil)

	tests := []struct {
		pos, name string
		code      diag.Code
	}{
		{"x1", "ok", diag.MalformedPosition},
		{"02", "ok", diag.MalformedPosition},
		{"2ab", "ok", diag.MalformedPosition},
		{"2", "", diag.InvalidName},
		{"2", "a/b", diag.InvalidName},
		{"2", `a\b`, diag.InvalidName},
		{"2", "..", diag.InvalidName},
		{"2", "b\nc", diag.InvalidName},
		{"2", "tab\there", diag.InvalidName},
	}
	for _, tt := range tests {
		_, err := f.org.Insert(context.Background(), tt.pos, tt.name)
		assert.True(t, diag.Is(err, tt.code), "%s %q: got %v", tt.pos, tt.name, err)
	}
}

func TestInsert_ShiftsPastSymlinkedTaskFolder(t *testing.T) {
	f := setup(t, serial("a"), nil)
	target := filepath.Join(t.TempDir(), "shared_a")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "data.txt"), []byte("rows"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(f.proj.Root, "1_a")))
	require.NoError(t, os.Symlink(target, filepath.Join(f.proj.Root, "1_a")))

	res, err := f.org.Insert(context.Background(), "1", "b")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backup 1_a",
		"rename 1_a 2_a",
		"create 1_b",
		"commit Mo.yaml",
	}, describe(res.Steps))
	assert.Equal(t, "rows", f.proj.ReadFile("2_a/data.txt"))
	assert.Equal(t, serial("b", "a"), f.proj.Tasks())

	_, err = f.org.Validate(context.Background())
	assert.NoError(t, err)
}

func TestInsert_NormalizesName(t *testing.T) {
	f := setup(t, manifest.Tasks{}, nil)

	_, err := f.org.Insert(context.Background(), "1", " Café ")
	require.NoError(t, err)
	assert.Equal(t, "Café", f.proj.Tasks()[1].Name)
	assert.Equal(t, []string{"1_Café"}, f.proj.Dirs())
}

func TestInsert_ScaffoldsTaskFolder(t *testing.T) {
	f := setup(t, serial("prep"), nil, WithScaffolder(scaffold.New("")))
	f.proj.Mkdir("wrappers")

	res, err := f.org.Insert(context.Background(), "2", "eval")
	require.NoError(t, err)

	assert.Contains(t, describe(res.Steps), "write "+filepath.Join("2_eval", "eval.py"))
	assert.Contains(t, f.proj.ReadFile("2_eval/eval.py"), "Skeleton for task: eval")
	assert.Equal(t, "-r ../requirements.txt", f.proj.ReadFile("2_eval/requirements.txt"))
	assert.Contains(t, f.proj.ReadFile("wrappers/eval_wrapper.py"), "from eval import main")
}

func TestInsert_ReconcileFailureAborts(t *testing.T) {
	f := setup(t, serial("prep", "train"), nil)
	require.NoError(t, os.Remove(filepath.Join(f.proj.Root, "2_train")))

	_, err := f.org.Insert(context.Background(), "1", "x")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.MissingFolder))
	assert.Equal(t, []string{"1_prep"}, f.proj.Dirs())
}

func TestDelete_FlattensParallelGroup(t *testing.T) {
	f := setup(t, manifest.Tasks{1: slots("a", "x", "b", "y")}, []bool{true, true})

	res, err := f.org.Delete(context.Background(), "1a")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backup 1a_x",
		"remove 1a_x",
		"backup 1b_y",
		"rename 1b_y 1_y",
		"commit Mo.yaml",
	}, describe(res.Steps))
	assert.Equal(t, serial("y"), f.proj.Tasks())
	assert.Equal(t, []string{"1_y"}, f.proj.Dirs())
	assert.Equal(t, []string{
		"Delete folder '1a_x'?",
		"Flatten group 1 by renaming '1b_y' to '1_y'?",
	}, f.prompter.Asked())
}

func TestDelete_KeepsLargerParallelGroup(t *testing.T) {
	f := setup(t, manifest.Tasks{1: slots("a", "x", "b", "y", "c", "z")}, []bool{true})

	_, err := f.org.Delete(context.Background(), "1b")
	require.NoError(t, err)
	assert.Equal(t, slots("a", "x", "c", "z"), f.proj.Tasks()[1])
	assert.Equal(t, []string{"1a_x", "1c_z"}, f.proj.Dirs())
}

func TestDelete_SerialClosesGap(t *testing.T) {
	f := setup(t, serial("a", "b", "c"), []bool{true})

	res, err := f.org.Delete(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backup 1_a",
		"remove 1_a",
		"backup 2_b",
		"rename 2_b 1_b",
		"backup 3_c",
		"rename 3_c 2_c",
		"commit Mo.yaml",
	}, describe(res.Steps))
	assert.Equal(t, serial("b", "c"), f.proj.Tasks())
	assert.Equal(t, []string{"1_b", "2_c"}, f.proj.Dirs())
}

func TestDelete_Declined(t *testing.T) {
	tests := map[string]struct {
		tasks   manifest.Tasks
		pos     string
		answers []bool
		code    diag.Code
	}{
		"deletion":   {serial("a", "b"), "1", []bool{false}, diag.OperationDeclined},
		"flattening": {manifest.Tasks{1: slots("a", "x", "b", "y")}, "1a", []bool{true, false}, diag.ConversionDeclined},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := setup(t, tt.tasks, tt.answers)
			dirs, doc := f.proj.Dirs(), f.proj.ReadFile(manifest.DefaultFile)

			_, err := f.org.Delete(context.Background(), tt.pos)
			require.Error(t, err)
			assert.True(t, diag.Is(err, tt.code), "got %v", err)
			assertUnchanged(t, f, dirs, doc)
		})
	}
}

func TestDelete_LookupErrors(t *testing.T) {
	f := setup(t, manifest.Tasks{
		1: slots("a", "x", "b", "y"),
		2: manifest.SerialEntry("z"),
	}, nil)

	tests := map[string]diag.Code{
		"1":  diag.InvalidGroupKind,
		"2a": diag.InvalidGroupKind,
		"1c": diag.TaskNotFound,
		"5":  diag.TaskNotFound,
		"b":  diag.MalformedPosition,
	}
	for pos, code := range tests {
		_, err := f.org.Delete(context.Background(), pos)
		assert.True(t, diag.Is(err, code), "%s: got %v", pos, err)
	}
	assert.Empty(t, f.prompter.Asked())
}

func TestDelete_LastSlotOfGroupIsRejected(t *testing.T) {
	f := setup(t, manifest.Tasks{1: slots("c", "solo")}, []bool{true})

	_, err := f.org.Delete(context.Background(), "1c")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.InvalidGroupKind))
	assert.Equal(t, []string{"1c_solo"}, f.proj.Dirs())
}

func TestInsertThenDelete_RestoresOtherTasks(t *testing.T) {
	orig := serial("a", "b", "c")
	f := setup(t, orig, []bool{true})

	_, err := f.org.Insert(context.Background(), "2", "tmp")
	require.NoError(t, err)
	_, err = f.org.Delete(context.Background(), "2")
	require.NoError(t, err)

	assert.Equal(t, orig, f.proj.Tasks())
	assert.Equal(t, []string{"1_a", "2_b", "3_c"}, f.proj.Dirs())
}

func TestMove_ToEarlierOrder(t *testing.T) {
	f := setup(t, serial("a", "b", "c"), nil)

	res, err := f.org.Move(context.Background(), "3", "1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backup 2_b",
		"rename 2_b 3_b",
		"backup 1_a",
		"rename 1_a 2_a",
		"relocate 3_c 1_c",
		"commit Mo.yaml",
	}, describe(res.Steps))
	assert.Equal(t, serial("c", "a", "b"), f.proj.Tasks())
	assert.Equal(t, []string{"1_c", "2_a", "3_b"}, f.proj.Dirs())
}

func TestMove_ToLaterOrder(t *testing.T) {
	f := setup(t, serial("a", "b", "c"), nil)

	_, err := f.org.Move(context.Background(), "1", "3")
	require.NoError(t, err)

	assert.Equal(t, serial("b", "c", "a"), f.proj.Tasks())
	assert.Equal(t, []string{"1_b", "2_c", "3_a"}, f.proj.Dirs())
}

func TestMove_StashesSourceWhenShiftTargetsIt(t *testing.T) {
	f := setup(t, serial("x", "x"), nil)
	f.proj.WriteFile("1_x/first.txt", "1")
	f.proj.WriteFile("2_x/second.txt", "2")

	res, err := f.org.Move(context.Background(), "1", "2")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"stash 1_x .mo-move-1_x",
		"backup 2_x",
		"rename 2_x 1_x",
		"relocate .mo-move-1_x 2_x",
		"commit Mo.yaml",
	}, describe(res.Steps))
	assert.Equal(t, []string{"1_x", "2_x"}, f.proj.Dirs())
	assert.Equal(t, "2", f.proj.ReadFile("1_x/second.txt"))
	assert.Equal(t, "1", f.proj.ReadFile("2_x/first.txt"))
}

func TestMove_SlotOutFlattensSource(t *testing.T) {
	f := setup(t, manifest.Tasks{
		1: slots("a", "x", "b", "y"),
		2: manifest.SerialEntry("z"),
	}, []bool{true})

	_, err := f.org.Move(context.Background(), "1a", "3")
	require.NoError(t, err)

	assert.Equal(t, serial("y", "z", "x"), f.proj.Tasks())
	assert.Equal(t, []string{"1_y", "2_z", "3_x"}, f.proj.Dirs())
}

func TestMove_IntoSerialConverts(t *testing.T) {
	f := setup(t, serial("a", "b", "c"), []bool{true})

	_, err := f.org.Move(context.Background(), "3", "1a")
	require.NoError(t, err)

	tasks := f.proj.Tasks()
	assert.Equal(t, slots("a", "c", "b", "a"), tasks[1])
	assert.Equal(t, manifest.SerialEntry("b"), tasks[2])
	assert.Len(t, tasks, 2)
	assert.Equal(t, []string{"1a_c", "1b_a", "2_b"}, f.proj.Dirs())
}

func TestMove_DestinationResolvedAfterRemoval(t *testing.T) {
	f := setup(t, serial("x", "y"), nil)
	dirs, doc := f.proj.Dirs(), f.proj.ReadFile(manifest.DefaultFile)

	// Two groups before the move, one after removing the source: order 3
	// is out of range even though it was a valid append target before.
	for _, to := range []string{"3", "3a"} {
		_, err := f.org.Move(context.Background(), "2", to)
		require.Error(t, err)
		assert.True(t, diag.Is(err, diag.PositionOutOfRange), "%s: %v", to, err)
	}
	assertUnchanged(t, f, dirs, doc)
}

func TestMove_ExistingDestinationSkipsRelocationButCommits(t *testing.T) {
	f := setup(t, serial("a", "b"), nil)
	f.proj.Mkdir("2a_a") // not a configured position, ignored by reconcile

	res, err := f.org.Move(context.Background(), "1", "2a")
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "'2a_a' already exists")
	assert.Contains(t, describe(res.Steps), "skip 1_a 2a_a")

	assert.Equal(t, manifest.Tasks{1: manifest.SerialEntry("b"), 2: slots("a", "a")}, f.proj.Tasks())
	assert.Equal(t, []string{"1_a", "1_b", "2a_a"}, f.proj.Dirs())

	// The orphaned source now collides with the shifted task.
	_, err = f.org.Validate(context.Background())
	assert.True(t, diag.Is(err, diag.DuplicatePosition))
}

func TestMove_SkippedRelocationNamesParkedFolder(t *testing.T) {
	f := setup(t, serial("x", "x"), nil)
	f.proj.WriteFile("1_x/first.txt", "1")
	f.proj.Mkdir("2a_x") // not a configured position, ignored by reconcile

	res, err := f.org.Move(context.Background(), "1", "2a")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"stash 1_x .mo-move-1_x",
		"backup 2_x",
		"rename 2_x 1_x",
		"skip .mo-move-1_x 2a_x",
		"commit Mo.yaml",
	}, describe(res.Steps))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "parked in hidden folder '.mo-move-1_x'")
	assert.Equal(t, "1", f.proj.ReadFile(".mo-move-1_x/first.txt"))
}

func TestMove_SamePositionIsNoop(t *testing.T) {
	f := setup(t, serial("a", "b"), nil)
	dirs, doc := f.proj.Dirs(), f.proj.ReadFile(manifest.DefaultFile)

	res, err := f.org.Move(context.Background(), "2", "2")
	require.NoError(t, err)
	assert.Empty(t, res.Steps)
	assert.NotEmpty(t, res.Warnings)
	assertUnchanged(t, f, dirs, doc)

	_, err = f.org.Move(context.Background(), "7", "7")
	assert.True(t, diag.Is(err, diag.TaskNotFound))
}

func TestDryRun_ReportsPlanWithoutTouchingDisk(t *testing.T) {
	f := setup(t, serial("prep", "train"), nil, DryRun(true))
	dirs, doc := f.proj.Dirs(), f.proj.ReadFile(manifest.DefaultFile)

	res, err := f.org.Insert(context.Background(), "2a", "tune")
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, []string{
		"rename 2_train 2b_train",
		"create 2a_tune",
		"commit Mo.yaml",
	}, describe(res.Steps))
	require.Len(t, res.Prompts, 1)
	assert.Contains(t, res.Prompts[0], "Convert serial task at 2")
	assert.Equal(t, slots("a", "tune", "b", "train"), res.Tasks[2])
	assert.Empty(t, f.prompter.Asked())
	assertUnchanged(t, f, dirs, doc)
}

type fakeRecorder struct {
	events []string
}

func (r *fakeRecorder) Begin(_ context.Context, id, op string, args []string) error {
	r.events = append(r.events, fmt.Sprintf("begin %s %s %s", id, op, strings.Join(args, " ")))
	return nil
}

func (r *fakeRecorder) Step(_ context.Context, id, kind, path, to string) error {
	if kind == string(StepBackup) {
		to = "<loc>"
	}
	r.events = append(r.events, strings.TrimSpace(fmt.Sprintf("step %s %s %s %s", id, kind, path, to)))
	return nil
}

func (r *fakeRecorder) Finish(_ context.Context, id string, err error) error {
	status := "ok"
	if err != nil {
		status = string(diag.CodeOf(err))
	}
	r.events = append(r.events, fmt.Sprintf("finish %s %s", id, status))
	return nil
}

func TestRecorder_JournalsStepsAndOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	f := setup(t, serial("prep", "train"), nil, WithRecorder(rec))

	_, err := f.org.Insert(context.Background(), "2", "eval")
	require.NoError(t, err)
	_, err = f.org.Insert(context.Background(), "9", "late")
	require.Error(t, err)

	assert.Equal(t, []string{
		"begin op-1 insert 2 eval",
		"step op-1 backup 2_train <loc>",
		"step op-1 rename 2_train 3_train",
		"step op-1 create 2_eval",
		"step op-1 commit Mo.yaml",
		"finish op-1 ok",
		"begin op-2 insert 9 late",
		"finish op-2 POSITION_OUT_OF_RANGE",
	}, rec.events)
}

func TestRecorder_NotUsedForDryRun(t *testing.T) {
	rec := &fakeRecorder{}
	f := setup(t, serial("prep"), nil, WithRecorder(rec), DryRun(true))

	_, err := f.org.Insert(context.Background(), "2", "eval")
	require.NoError(t, err)
	assert.Empty(t, rec.events)
}

func TestValidate_ReportsSequenceAndDrift(t *testing.T) {
	f := setup(t, serial("prep", "train"), nil)
	require.NoError(t, os.Rename(filepath.Join(f.proj.Root, "1_prep"), filepath.Join(f.proj.Root, "1_PREP")))

	r, err := f.org.Validate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Demo", r.Model)
	assert.Equal(t, 2, r.Sequence.Len())
	require.Len(t, r.Drift, 1)
	assert.Equal(t, DriftNote{
		Position: "1",
		Name:     "prep",
		Folder:   "1_PREP",
		Expected: "1_prep",
		Kind:     sequence.DriftVariant,
	}, r.Drift[0])
}

func TestValidate_MissingManifest(t *testing.T) {
	ws, err := workspace.NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = New(ws).Validate(context.Background())
	assert.True(t, diag.Is(err, diag.ConfigMissing))
}

func TestCanceledContext(t *testing.T) {
	f := setup(t, serial("prep"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.org.Insert(ctx, "2", "eval")
	assert.True(t, errors.Is(err, context.Canceled))
}
