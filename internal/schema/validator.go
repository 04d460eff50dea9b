package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Validator checks documents against the compiled schemas of a Set.
type Validator struct {
	schemas map[wingetrel.ManifestType]*jsonschema.Schema
}

// NewValidator compiles every schema in set.
// A schema that does not compile is reported as wingetrel.ErrSchemaUnavailable.
func NewValidator(set *Set) (*Validator, error) {
	v := &Validator{schemas: make(map[wingetrel.ManifestType]*jsonschema.Schema, len(set.Raw))}

	for t, raw := range set.Raw {
		id := resourceID(t, set.Version)

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(id, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: add %s schema: %v", wingetrel.ErrSchemaUnavailable, t, err)
		}
		compiled, err := compiler.Compile(id)
		if err != nil {
			return nil, fmt.Errorf("%w: compile %s schema: %v", wingetrel.ErrSchemaUnavailable, t, err)
		}
		v.schemas[t] = compiled
	}

	return v, nil
}

// Validate checks value, a decoded document tree, against the schema for t.
// Failures are reported as wingetrel.ErrSchemaValidation.
func (v *Validator) Validate(t wingetrel.ManifestType, value any) error {
	compiled, ok := v.schemas[t]
	if !ok {
		return fmt.Errorf("%w: %q", wingetrel.ErrUnknownManifestType, t)
	}

	payload, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("%w: normalize document: %v", wingetrel.ErrSchemaValidation, err)
	}

	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", wingetrel.ErrSchemaValidation, err)
	}
	return nil
}

// normalizeValue round-trips value through JSON so that the validator only
// sees the types encoding/json produces.
func normalizeValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func resourceID(t wingetrel.ManifestType, version string) string {
	return fmt.Sprintf("inmemory://manifest.%s.%s.json", t, version)
}
