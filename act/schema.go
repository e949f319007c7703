package act

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// NewTool declares a tool whose parameters are described by the struct type
// of params.
//
// Field names follow the json tag. Fields without omitempty that are not
// pointers are required. The description and enum tags are copied into the
// schema; enum values are comma separated.
func NewTool(name, description string, params any) (Tool, error) {
	if strings.TrimSpace(name) == "" {
		return Tool{}, errors.New("tool name must not be empty")
	}

	schema, err := ParametersFor(params)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %s: %w", name, err)
	}

	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
	}, nil
}

// ParametersFor builds a JSON schema object from a struct value or pointer
// to a struct value. A nil value yields an object schema without properties.
func ParametersFor(v any) (map[string]any, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("parameters must be a struct, got %s", t.Kind())
	}

	b := &schemaBuilder{seen: map[reflect.Type]bool{}}
	return b.object(t)
}

var timeType = reflect.TypeFor[time.Time]()

// scalarTypes maps reflect kinds with a fixed JSON schema type.
var scalarTypes = map[reflect.Kind]string{
	reflect.String:  "string",
	reflect.Bool:    "boolean",
	reflect.Int:     "integer",
	reflect.Int8:    "integer",
	reflect.Int16:   "integer",
	reflect.Int32:   "integer",
	reflect.Int64:   "integer",
	reflect.Uint:    "integer",
	reflect.Uint8:   "integer",
	reflect.Uint16:  "integer",
	reflect.Uint32:  "integer",
	reflect.Uint64:  "integer",
	reflect.Float32: "number",
	reflect.Float64: "number",
}

// schemaBuilder walks a parameter type. seen holds the struct types on the
// current path and rejects cycles.
type schemaBuilder struct {
	seen map[reflect.Type]bool
}

func (b *schemaBuilder) build(t reflect.Type) (map[string]any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == timeType {
		return map[string]any{"type": "string", "format": "date-time"}, nil
	}
	if name, ok := scalarTypes[t.Kind()]; ok {
		return map[string]any{"type": name}, nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return b.object(t)
	case reflect.Slice, reflect.Array:
		items, err := b.build(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", t.Key())
		}
		values, err := b.build(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": values}, nil
	case reflect.Interface:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("unsupported kind: %s", t.Kind())
}

func (b *schemaBuilder) object(t reflect.Type) (map[string]any, error) {
	if b.seen[t] {
		return nil, fmt.Errorf("recursive type not supported: %s", t)
	}
	b.seen[t] = true
	defer delete(b.seen, t)

	props := map[string]any{}
	var required []string

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := readFieldTag(f)
		if tag.skip {
			continue
		}

		schema, err := b.build(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		tag.apply(schema)
		props[tag.name] = schema

		if !tag.optional && f.Type.Kind() != reflect.Pointer {
			required = append(required, tag.name)
		}
	}

	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out, nil
}

// fieldTag is what the json, description and enum tags say about a field.
type fieldTag struct {
	name        string
	optional    bool
	skip        bool
	description string
	enum        []string
}

func readFieldTag(f reflect.StructField) fieldTag {
	tag := fieldTag{name: f.Name, description: f.Tag.Get("description")}

	raw := f.Tag.Get("json")
	if raw == "-" {
		tag.skip = true
		return tag
	}
	name, opts, _ := strings.Cut(raw, ",")
	if name != "" {
		tag.name = name
	}
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			tag.optional = true
		}
	}

	if enum := f.Tag.Get("enum"); enum != "" {
		for value := range strings.SplitSeq(enum, ",") {
			tag.enum = append(tag.enum, strings.TrimSpace(value))
		}
	}
	return tag
}

func (t fieldTag) apply(schema map[string]any) {
	if t.description != "" {
		schema["description"] = t.description
	}
	if len(t.enum) > 0 {
		schema["enum"] = t.enum
	}
}
