package manifest

import (
	_ "embed"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/mo/internal/diag"
)

//go:embed schema.cue
var schemaCUE string

// schema holds the compiled schema. A cue.Context is not safe for concurrent
// use, so validations share it under mu.
var schema struct {
	once  sync.Once
	mu    sync.Mutex
	ctx   *cue.Context
	value cue.Value
	err   error
}

// compiledSchema compiles the embedded schema on first use.
func compiledSchema() (*cue.Context, cue.Value, error) {
	schema.once.Do(func() {
		schema.ctx = cuecontext.New()
		schema.value = schema.ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := schema.value.Err(); err != nil {
			schema.err = diag.Wrap(diag.ConfigInvalid, err, "manifest schema does not compile")
		}
	})
	return schema.ctx, schema.value, schema.err
}

// validateSchema checks a decoded document against the embedded CUE schema.
// Violations surface as ConfigInvalid with every CUE error message joined.
func validateSchema(doc any) error {
	ctx, value, err := compiledSchema()
	if err != nil {
		return err
	}

	schema.mu.Lock()
	defer schema.mu.Unlock()

	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return diag.Wrap(diag.ConfigInvalid, err, "manifest could not be encoded for validation")
	}

	if err := value.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return diag.New(diag.ConfigInvalid, "manifest does not match schema: %s", errors.Details(err, nil))
	}
	return nil
}
