// Package toolset adapts the tool implementations the teacher ships in
// internal/tools into toolloop.Tool. Every tool here validates its
// arguments against its own JSON schema before touching the
// filesystem or network, using santhosh-tekuri/jsonschema/v5 rather
// than the teacher's bare json.Unmarshal-and-hope approach, since the
// executor now hands tools raw, unparsed argument bytes straight from
// the model.
package toolset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compileSchema compiles a literal JSON schema string once at tool
// construction time. Panics on a malformed schema, since that is a
// programmer error baked into the binary, not a runtime condition.
func compileSchema(raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	const resource = "schema.json"
	if err := compiler.AddResource(resource, strings.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("toolset: invalid schema: %v", err))
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		panic(fmt.Sprintf("toolset: compiling schema: %v", err))
	}
	return schema
}

// validateArgs decodes argsJSON into an interface{} (jsonschema wants
// Go values, not bytes) and checks it against schema.
func validateArgs(schema *jsonschema.Schema, argsJSON json.RawMessage) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(argsJSON, &v); err != nil {
		return nil, fmt.Errorf("invalid arguments json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("arguments failed schema validation: %w", err)
	}
	m, _ := v.(map[string]any)
	return m, nil
}
