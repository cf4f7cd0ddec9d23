// Package organizer implements the operations that keep Mo.yaml and the task
// folders in lockstep: Validate, Insert, Delete and Move.
//
// Every mutator follows the same shape:
//
//  1. Reconcile: load the manifest, scan the folders and build the sequence.
//     Nothing is trusted from a previous invocation.
//  2. Plan: compute the target task table and the ordered folder steps on
//     copies of the reconciled state, without touching disk.
//  3. Confirm: ask every confirmation the plan needs. A decline aborts before
//     any destructive step.
//  4. Execute: run the folder steps, backing up before each destructive one,
//     then commit the manifest.
//
// Folder steps are not transactional. A failure part way leaves earlier
// steps in place and the manifest untouched; the next reconcile reports the
// divergence and the journal shows what ran.
package organizer

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/scaffold"
	"github.com/roach88/mo/internal/workspace"
)

// StepKind names one filesystem or manifest step.
type StepKind string

const (
	StepRename   StepKind = "rename"
	StepRemove   StepKind = "remove"
	StepCreate   StepKind = "create"
	StepRelocate StepKind = "relocate"
	StepStash    StepKind = "stash"
	StepBackup   StepKind = "backup"
	StepWrite    StepKind = "write"
	StepKeep     StepKind = "keep"
	StepSkip     StepKind = "skip"
	StepCommit   StepKind = "commit"
)

// Step is one planned or executed action. Paths are relative to the project
// root.
type Step struct {
	Kind StepKind `json:"kind"`
	Path string   `json:"path"`

	// To is the target of a rename, relocate or stash, and the backup
	// location of a backup.
	To string `json:"to,omitempty"`

	// Name is the task a create step scaffolds.
	Name string `json:"name,omitempty"`
}

// Result describes a finished (or, for dry runs, planned) mutation.
type Result struct {
	ID     string `json:"id"`
	Op     string `json:"op"`
	DryRun bool   `json:"dry_run,omitempty"`

	Steps    []Step   `json:"steps"`
	Warnings []string `json:"warnings,omitempty"`

	// Prompts lists the confirmations the plan needs. Only set for dry runs.
	Prompts []string `json:"prompts,omitempty"`

	// Tasks is the task table after the operation.
	Tasks manifest.Tasks `json:"-"`
}

// Recorder persists operations as they run.
type Recorder interface {
	Begin(ctx context.Context, id, op string, args []string) error
	Step(ctx context.Context, id string, kind, path, to string) error
	Finish(ctx context.Context, id string, err error) error
}

// IDGenerator produces operation IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable operation IDs.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Scaffolder populates a newly inserted task folder.
type Scaffolder interface {
	Task(ws workspace.Workspace, folder, name string) ([]scaffold.Action, error)
}

// Organizer runs operations against one project root.
type Organizer struct {
	ws           workspace.Workspace
	manifestFile string
	logger       *slog.Logger
	recorder     Recorder
	ids          IDGenerator
	scaffolder   Scaffolder
	dryRun       bool
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithLogger sets the logger for diagnostic output.
func WithLogger(l *slog.Logger) Option {
	return func(o *Organizer) { o.logger = l }
}

// WithManifestFile sets the manifest file name, relative to the root unless
// absolute.
func WithManifestFile(name string) Option {
	return func(o *Organizer) { o.manifestFile = name }
}

// WithRecorder journals every mutation.
func WithRecorder(r Recorder) Option {
	return func(o *Organizer) { o.recorder = r }
}

// WithIDGenerator sets the operation ID source.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *Organizer) { o.ids = g }
}

// WithScaffolder sets what fills new task folders. Nil creates bare folders.
func WithScaffolder(s Scaffolder) Option {
	return func(o *Organizer) { o.scaffolder = s }
}

// DryRun makes mutators return their plan without executing it.
func DryRun(enabled bool) Option {
	return func(o *Organizer) { o.dryRun = enabled }
}

// New creates an organizer for the workspace.
func New(ws workspace.Workspace, opts ...Option) *Organizer {
	o := &Organizer{
		ws:           ws,
		manifestFile: manifest.DefaultFile,
		logger:       slog.Default(),
		ids:          UUIDv7Generator{},
		scaffolder:   scaffold.New(""),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Organizer) manifestPath() string {
	if filepath.IsAbs(o.manifestFile) {
		return o.manifestFile
	}
	return filepath.Join(o.ws.Root(), o.manifestFile)
}
