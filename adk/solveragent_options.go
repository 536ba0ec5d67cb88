package adk

import "fmt"

// LineEncoder turns a schema-valid JSON object into one bridge input line.
type LineEncoder func(obj map[string]any) (string, error)

// SolverAgentOptions configures a SolverAgent.
type SolverAgentOptions struct {
	name        string
	description string
	inputSchema string
	encoder     LineEncoder
}

// OptSolverAgentOptionsSetter sets one SolverAgentOptions field.
type OptSolverAgentOptionsSetter func(o *SolverAgentOptions)

// WithSolverAgentInputSchema enables JSON object input validated against schema.
func WithSolverAgentInputSchema(schema string) OptSolverAgentOptionsSetter {
	return func(o *SolverAgentOptions) {
		o.inputSchema = schema
	}
}

// WithSolverAgentEncoder sets how validated JSON input becomes a line.
func WithSolverAgentEncoder(enc LineEncoder) OptSolverAgentOptionsSetter {
	return func(o *SolverAgentOptions) {
		o.encoder = enc
	}
}

// NewSolverAgentOptions applies setters over the mandatory fields.
func NewSolverAgentOptions(name, description string, setters ...OptSolverAgentOptionsSetter) SolverAgentOptions {
	o := SolverAgentOptions{name: name, description: description}
	for _, set := range setters {
		set(&o)
	}

	return o
}

// Validate checks mandatory fields and option consistency.
func (o SolverAgentOptions) Validate() error {
	if o.name == "" {
		return fmt.Errorf("name is required")
	}

	if o.description == "" {
		return fmt.Errorf("description is required")
	}

	if o.inputSchema != "" && o.encoder == nil {
		return fmt.Errorf("input schema requires an encoder")
	}

	return nil
}
