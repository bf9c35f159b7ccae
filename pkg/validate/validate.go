// Package validate checks chat completion request documents against a JSON
// Schema before they are sent.
package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
)

//go:embed schemas/chat_request.json
var requestSchema []byte

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(requestSchema))
	})
	return compiledSchema, compileErr
}

// Request validates raw JSON bytes against the request schema. It returns the
// violations found (nil when valid) and an error only when the schema or the
// document cannot be processed.
func Request(data []byte) ([]string, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling request schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validating request: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

// Decode validates data and, when it is valid, decodes it into a chat.Request.
func Decode(data []byte) (*chat.Request, []string, error) {
	errs, err := Request(data)
	if err != nil || len(errs) > 0 {
		return nil, errs, err
	}

	var req chat.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, nil, fmt.Errorf("decoding request: %w", err)
	}
	return &req, nil, nil
}
