package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type fakeRepairer struct {
	output string
	err    error
	calls  int
	input  string
}

func (f *fakeRepairer) repair(_ context.Context, text string, _ *Schema) (string, error) {
	f.calls++
	f.input = text
	return f.output, f.err
}

func TestRecoverValidJSONIsIdempotent(t *testing.T) {
	valid := `{"purchaseDate":"2024-03-10","items":[{"name":"Greek  yogurt","quantity":2,"unit":"cup","confidence":0.8},{"name":"milk","shelfLifeDays":7}]}`

	var want map[string]any
	if err := json.Unmarshal([]byte(valid), &want); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := Detrail(ExtractObject(Sanitize(valid))); got != valid {
		t.Fatalf("local stages changed valid JSON:\n got %s\nwant %s", got, valid)
	}

	repairer := &fakeRepairer{}
	res, err := NewPipeline(BatchSchema, 0).Recover(context.Background(), valid, repairer.repair)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if res.Stage != StageParse {
		t.Fatalf("expected parse stage, got %s", res.Stage)
	}
	if !reflect.DeepEqual(res.Object, want) {
		t.Fatalf("parsed object differs: %#v", res.Object)
	}
	if repairer.calls != 0 {
		t.Fatalf("repair must not be called for valid JSON")
	}
}

func TestRecoverCodeFenceAndTrailingCommaWithoutRepair(t *testing.T) {
	raw := "\ufeffHere is the result:\n```json\n{\n  \"items\": [\n    {\"name\": \"milk\", \"unit\": \"L\",},\n  ],\n}\n```\n"

	repairer := &fakeRepairer{}
	res, err := NewPipeline(BatchSchema, 0).Recover(context.Background(), raw, repairer.repair)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if repairer.calls != 0 {
		t.Fatalf("expected no repair call, got %d", repairer.calls)
	}
	items, _ := res.Object["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %#v", res.Object["items"])
	}
}

func TestRecoverQuoteWrappedJSON(t *testing.T) {
	raw := `"{\"items\": [{\"name\": \"eggs\"}]}"`

	res, err := NewPipeline(BatchSchema, 0).Recover(context.Background(), raw, nil)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if res.Stage != StageUnquote {
		t.Fatalf("expected unquote stage, got %s", res.Stage)
	}
}

func TestRecoverRepairsOnce(t *testing.T) {
	repairer := &fakeRepairer{output: "```json\n{\"items\": []}\n```"}

	res, err := NewPipeline(BatchSchema, 0).Recover(context.Background(), "I could not find any food, sorry", repairer.repair)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if repairer.calls != 1 {
		t.Fatalf("expected exactly one repair call, got %d", repairer.calls)
	}
	if res.Stage != StageRepair {
		t.Fatalf("expected repair stage, got %s", res.Stage)
	}
	if repairer.input != "I could not find any food, sorry" {
		t.Fatalf("repair should receive the raw text, got %q", repairer.input)
	}
}

func TestRecoverFailsWithBoundedSample(t *testing.T) {
	raw := strings.Repeat("x", 2000)
	repairer := &fakeRepairer{output: "still not json"}

	_, err := NewPipeline(BatchSchema, 64).Recover(context.Background(), raw, repairer.repair)
	if !errors.Is(err, domain.ErrModelOutputInvalid) {
		t.Fatalf("expected model output invalid, got %v", err)
	}
	outErr, ok := domain.AsModelOutputError(err)
	if !ok {
		t.Fatalf("expected ModelOutputError, got %T", err)
	}
	if outErr.Stage != string(StageRepair) {
		t.Fatalf("expected repair stage, got %s", outErr.Stage)
	}
	if got := len([]rune(outErr.Sample)); got != 64+len("...") {
		t.Fatalf("expected bounded sample, got length %d", got)
	}
	if repairer.calls != 1 {
		t.Fatalf("expected exactly one repair call, got %d", repairer.calls)
	}
}

func TestRecoverReturnsRepairTransportError(t *testing.T) {
	repairErr := domain.WrapError(domain.ErrModelUnavailable, "repair", errors.New("timeout"))
	repairer := &fakeRepairer{err: repairErr}

	_, err := NewPipeline(BatchSchema, 0).Recover(context.Background(), "garbage", repairer.repair)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected model unavailable, got %v", err)
	}
}

func TestRecoverRejectsSchemaViolations(t *testing.T) {
	_, err := NewPipeline(BatchSchema, 0).Recover(context.Background(), `{"items": "milk"}`, nil)
	if !errors.Is(err, domain.ErrModelOutputInvalid) {
		t.Fatalf("expected schema violation to be invalid output, got %v", err)
	}
}

func TestDetrailKeepsStringContents(t *testing.T) {
	in := `{"note": "a, }", "list": [1, 2, ], }`
	want := `{"note": "a, }", "list": [1, 2 ] }`
	if got := Detrail(in); got != want {
		t.Fatalf("Detrail = %q, want %q", got, want)
	}
}

func TestSanitizeReplacesControlCharacters(t *testing.T) {
	in := "{\"name\":\t\"pea\u0000nuts\",\r\n\"qty\":   2}"
	want := "{\"name\": \"pea nuts\", \"qty\": 2}"
	if got := Sanitize(in); got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}
