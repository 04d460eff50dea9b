package schema

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Order maps each manifest type to its schema field order.
type Order map[wingetrel.ManifestType][]string

// Fields returns the field order for t.
func (o Order) Fields(t wingetrel.ManifestType) ([]string, error) {
	fields, ok := o[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", wingetrel.ErrUnknownManifestType, t)
	}
	return fields, nil
}

// Set is the loaded schema set of one manifest version.
type Set struct {
	Version string
	Order   Order
	Raw     map[wingetrel.ManifestType][]byte
}

// Resolver loads the schemas of one manifest version.
type Resolver struct {
	fetcher wingetrel.SchemaFetcher
	logger  wingetrel.Logger
}

// NewResolver creates a resolver.
// Panics if fetcher or logger is nil.
func NewResolver(fetcher wingetrel.SchemaFetcher, logger wingetrel.Logger) *Resolver {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Load fetches all four schemas concurrently and extracts their field order.
// Any failure is reported as wingetrel.ErrSchemaUnavailable.
func (r *Resolver) Load(ctx context.Context, manifestVersion string) (*Set, error) {
	types := wingetrel.ManifestTypes
	raw := make([][]byte, len(types))
	orders := make([][]string, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			data, err := r.fetcher.FetchSchema(gctx, t, manifestVersion)
			if err != nil {
				if errors.Is(err, wingetrel.ErrSchemaUnavailable) {
					return err
				}
				return fmt.Errorf("%w: %s schema: %w", wingetrel.ErrSchemaUnavailable, t, err)
			}

			fields, err := PropertyOrder(data)
			if err != nil {
				return fmt.Errorf("%w: %s schema: %w", wingetrel.ErrSchemaUnavailable, t, err)
			}

			raw[i] = data
			orders[i] = fields
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &Set{
		Version: manifestVersion,
		Order:   make(Order, len(types)),
		Raw:     make(map[wingetrel.ManifestType][]byte, len(types)),
	}
	for i, t := range types {
		set.Order[t] = orders[i]
		set.Raw[t] = raw[i]
		r.logger.Verbose("Schema %s %s: %d fields", t, manifestVersion, len(orders[i]))
	}
	return set, nil
}

// PropertyOrder returns the keys of the top-level "properties" object of a
// JSON schema in declaration order. JSON is valid YAML, and a yaml.Node keeps
// mapping keys in document order.
func PropertyOrder(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("schema is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("schema root is not an object")
	}

	props := mappingValue(root, "properties")
	if props == nil {
		return nil, errors.New(`schema has no "properties" object`)
	}
	if props.Kind != yaml.MappingNode {
		return nil, errors.New(`schema "properties" is not an object`)
	}

	fields := make([]string, 0, len(props.Content)/2)
	for i := 0; i+1 < len(props.Content); i += 2 {
		fields = append(fields, props.Content[i].Value)
	}
	return fields, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
