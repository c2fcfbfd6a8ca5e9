package ptero

import (
	"errors"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/mitchellh/mapstructure"
)

// Static errors for err113 compliance.
var (
	ErrMalformedRelation = errors.New("relation is not an envelope")
)

// Relation extracts the single resource included under name. It returns nil
// and no error when the relation was not included or is a null resource.
func Relation[T any](rels map[string]any, name string) (*T, error) {
	envelope, ok, err := relationEnvelope(rels, name)
	if err != nil || !ok {
		return nil, err
	}

	if envelope["attributes"] == nil {
		return nil, nil //nolint:nilnil // a missing relation is not an error
	}

	attributes, err := jsonpath.Get(relationPath(name, "attributes"), rels)
	if err != nil {
		return nil, relationError(name, err)
	}

	var value T

	err = decodeRelation(attributes, &value)
	if err != nil {
		return nil, relationError(name, err)
	}

	return &value, nil
}

// RelationList extracts the resource collection included under name. It
// returns nil and no error when the relation was not included.
func RelationList[T any](rels map[string]any, name string) ([]T, error) {
	envelope, ok, err := relationEnvelope(rels, name)
	if err != nil || !ok {
		return nil, err
	}

	if _, hasData := envelope["data"]; !hasData {
		return nil, relationError(name, ErrMalformedRelation)
	}

	matches, err := jsonpath.Get(relationPath(name, "data[*].attributes"), rels)
	if err != nil {
		return nil, relationError(name, err)
	}

	items, _ := matches.([]any)
	values := make([]T, 0, len(items))

	for _, item := range items {
		var value T

		err = decodeRelation(item, &value)
		if err != nil {
			return nil, relationError(name, err)
		}

		values = append(values, value)
	}

	return values, nil
}

func relationEnvelope(rels map[string]any, name string) (map[string]any, bool, error) {
	raw, ok := rels[name]
	if !ok || raw == nil {
		return nil, false, nil
	}

	envelope, ok := raw.(map[string]any)
	if !ok {
		return nil, false, relationError(name, ErrMalformedRelation)
	}

	return envelope, true, nil
}

func relationPath(name, suffix string) string {
	return fmt.Sprintf("$[%q].%s", name, suffix)
}

func decodeRelation(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return fmt.Errorf("creating relation decoder: %w", err)
	}

	err = decoder.Decode(input)
	if err != nil {
		return fmt.Errorf("decoding relation: %w", err)
	}

	return nil
}

func relationError(name string, err error) *Error {
	return &Error{Kind: KindDeserialize, Cause: fmt.Errorf("relation %q: %w", name, err)}
}
