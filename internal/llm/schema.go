package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the JSON structure a structured request asks for.
type Schema struct {
	// Name is the kebab-case identifier sent as the schema or tool name,
	// e.g. "beverage-question". Compiled schemas are cached by it, so two
	// schemas must not share a name.
	Name        string
	Description string
	Definition  map[string]any
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

func (s *Schema) compile() (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if c, ok := compiled[s.Name]; ok {
		return c, nil
	}

	// The compiler wants plain decoded JSON, not Go maps with typed slices.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled[s.Name] = sch
	return sch, nil
}

// Validate checks raw against the schema. Failures are *ErrInvalidResponse.
func (s *Schema) Validate(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}
	sch, err := s.compile()
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %s: %w", s.Name, err)}
	}
	if err := sch.Validate(v); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}

// Decode validates raw and unmarshals it into v.
func (s *Schema) Decode(raw json.RawMessage, v any) error {
	if err := s.Validate(raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
