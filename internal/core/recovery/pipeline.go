package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type Stage string

const (
	StageParse   Stage = "parse"
	StageUnquote Stage = "unquote"
	StageRepair  Stage = "repair"
)

const DefaultSampleLimit = 512

var errNoObject = errors.New("no JSON object found")

// Repairer asks the model to rewrite text as valid JSON for a schema. It is
// called at most once per Recover.
type Repairer func(ctx context.Context, text string, schema *Schema) (string, error)

type Result struct {
	Object map[string]any
	Stage  Stage
}

// Pipeline turns unreliable model text into a schema-valid object with at
// most two local parse attempts per text and a single repair round trip.
type Pipeline struct {
	schema      *Schema
	sampleLimit int
}

func NewPipeline(schema *Schema, sampleLimit int) *Pipeline {
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}
	return &Pipeline{schema: schema, sampleLimit: sampleLimit}
}

// Recover runs the local stages on raw and, when they fail and repair is
// non-nil, the local stages once more on the repaired text. Repair errors
// are returned unchanged; exhausting every stage yields a
// *domain.ModelOutputError.
func (p *Pipeline) Recover(ctx context.Context, raw string, repair Repairer) (Result, error) {
	obj, stage, err := p.parseLocal(raw)
	if err == nil {
		return Result{Object: obj, Stage: stage}, nil
	}
	if repair == nil {
		return Result{}, p.outputError(StageUnquote, raw, err)
	}

	repaired, repairErr := repair(ctx, raw, p.schema)
	if repairErr != nil {
		return Result{}, repairErr
	}
	obj, _, err = p.parseLocal(repaired)
	if err != nil {
		return Result{}, p.outputError(StageRepair, raw, err)
	}
	return Result{Object: obj, Stage: StageRepair}, nil
}

func (p *Pipeline) parseLocal(raw string) (map[string]any, Stage, error) {
	clean := Sanitize(raw)
	obj, err := p.decode(Detrail(ExtractObject(clean)))
	if err == nil {
		return obj, StageParse, nil
	}

	unquoted, ok := Unquote(clean)
	if !ok {
		return nil, StageParse, err
	}
	obj, err = p.decode(Detrail(ExtractObject(Sanitize(unquoted))))
	if err != nil {
		return nil, StageUnquote, err
	}
	return obj, StageUnquote, nil
}

func (p *Pipeline) decode(candidate string) (map[string]any, error) {
	if candidate == "" {
		return nil, errNoObject
	}
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNoObject
	}
	if err := p.schema.Validate(obj); err != nil {
		return nil, fmt.Errorf("validate %s: %w", p.schema.Name, err)
	}
	return obj, nil
}

func (p *Pipeline) outputError(stage Stage, raw string, err error) error {
	return &domain.ModelOutputError{
		Stage:  string(stage),
		Sample: Sample(raw, p.sampleLimit),
		Err:    err,
	}
}
