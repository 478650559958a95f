package ir

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CompileToolSchema validates that a tool's Parameters document is a
// well-formed JSON Schema object. Provider adapters and the capability
// StructuredOutputJsonSchema check rely on this to fail fast at
// construction time rather than at the point a model call is dispatched.
func CompileToolSchema(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("ir: tool definition requires a name")
	}
	if def.Parameters == nil {
		return nil
	}
	c := jsonschema.NewCompiler()
	resource := def.Name + ".schema.json"
	if err := c.AddResource(resource, def.Parameters); err != nil {
		return fmt.Errorf("ir: add schema resource for tool %q: %w", def.Name, err)
	}
	if _, err := c.Compile(resource); err != nil {
		return fmt.Errorf("ir: compile schema for tool %q: %w", def.Name, err)
	}
	return nil
}

// ValidateToolInput validates a tool call's input payload against the
// tool's declared JSON Schema. Returns nil when Parameters is empty (no
// schema to validate against).
func ValidateToolInput(def ToolDefinition, input any) error {
	if def.Parameters == nil {
		return nil
	}
	c := jsonschema.NewCompiler()
	resource := def.Name + ".schema.json"
	if err := c.AddResource(resource, def.Parameters); err != nil {
		return fmt.Errorf("ir: add schema resource for tool %q: %w", def.Name, err)
	}
	schema, err := c.Compile(resource)
	if err != nil {
		return fmt.Errorf("ir: compile schema for tool %q: %w", def.Name, err)
	}
	if err := schema.Validate(input); err != nil {
		return fmt.Errorf("ir: input for tool %q failed schema validation: %w", def.Name, err)
	}
	return nil
}
