package form

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/plms/internal/model"
)

//go:embed schema.cue
var schemaSource string

// ErrSchema is returned when a payload does not fit the API's item shape.
var ErrSchema = errors.New("payload rejected by schema")

// payloadSchema holds the compiled CUE schema. cue.Context is not safe for
// concurrent use, so every validation holds mu.
type payloadSchema struct {
	mu     sync.Mutex
	ctx    *cue.Context
	create cue.Value
	update cue.Value
}

var (
	schemaOnce sync.Once
	schema     *payloadSchema
	schemaErr  error
)

func loadSchema() (*payloadSchema, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile item schema: %w", err)
			return
		}
		schema = &payloadSchema{
			ctx:    ctx,
			create: v.LookupPath(cue.ParsePath("#ItemCreate")),
			update: v.LookupPath(cue.ParsePath("#ItemUpdate")),
		}
	})
	return schema, schemaErr
}

// ValidateCreate checks a create payload against #ItemCreate.
func ValidateCreate(req *model.ItemCreateRequest) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	return s.check(s.create, req)
}

// ValidateUpdate checks an update payload against #ItemUpdate.
func ValidateUpdate(req *model.ItemUpdateRequest) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	return s.check(s.update, req)
}

func (s *payloadSchema) check(def cue.Value, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.Encode(payload)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrSchema, formatCUEError(err))
	}
	return nil
}

// formatCUEError flattens a CUE error list into one line.
func formatCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}
