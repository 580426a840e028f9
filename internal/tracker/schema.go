package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/verte-zerg/lingua/internal/model"
)

const stateSchemaURL = "schema://tracker-state.json"

// stateSchema describes the persisted blob: {"<id>": {"mistakes": n, "lastSeen": ms}}.
const stateSchema = `{
	"type": "object",
	"propertyNames": {"pattern": "^-?[0-9]+$"},
	"additionalProperties": {
		"type": "object",
		"properties": {
			"mistakes": {"type": "integer", "minimum": 0},
			"lastSeen": {"type": "integer", "minimum": 0}
		},
		"required": ["mistakes", "lastSeen"],
		"additionalProperties": false
	}
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(stateSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(stateSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(stateSchemaURL)
	})
	return compiledSchema, compileErr
}

// decodeState validates raw against the state schema and decodes it.
func decodeState(raw string) (model.TrackerState, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	state := model.TrackerState{}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

// encodeState serializes the full mapping. encoding/json sorts integer map keys.
func encodeState(state model.TrackerState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
