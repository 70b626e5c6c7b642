// Package schema holds the declarative description of a handler's
// configurable inputs: resources group operations, operations declare fields.
// Definitions are built once at handler construction and read-only after.
package schema

type FieldKind string

const FIELD_STRING FieldKind = "string"
const FIELD_TEXTAREA FieldKind = "textarea"
const FIELD_NUMBER FieldKind = "number"
const FIELD_INTEGER FieldKind = "integer"
const FIELD_BOOL FieldKind = "boolean"
const FIELD_SELECT FieldKind = "select"

type FieldDef struct {
	Name        string
	DisplayName string
	Description string
	Kind        FieldKind
	Required    bool
	Default     any
	Options     []string
	Min         *float64
	Max         *float64
}

type OperationDef struct {
	Name              string
	DisplayName       string
	Description       string
	Fields            []FieldDef
	OutputDescription string
}

type ResourceDef struct {
	Name        string
	DisplayName string
	Description string
	Operations  []OperationDef
}

func String(name, displayName string) FieldDef {
	return FieldDef{Name: name, DisplayName: displayName, Kind: FIELD_STRING}
}

func Textarea(name, displayName string) FieldDef {
	return FieldDef{Name: name, DisplayName: displayName, Kind: FIELD_TEXTAREA}
}

func Number(name, displayName string) FieldDef {
	return FieldDef{Name: name, DisplayName: displayName, Kind: FIELD_NUMBER}
}

func Integer(name, displayName string) FieldDef {
	return FieldDef{Name: name, DisplayName: displayName, Kind: FIELD_INTEGER}
}

func Bool(name, displayName string) FieldDef {
	return FieldDef{Name: name, DisplayName: displayName, Kind: FIELD_BOOL}
}

func Select(name, displayName string, options []string) FieldDef {
	return FieldDef{Name: name, DisplayName: displayName, Kind: FIELD_SELECT, Options: options}
}

func (f FieldDef) AsRequired() FieldDef {
	f.Required = true
	return f
}

func (f FieldDef) WithDefault(value any) FieldDef {
	f.Default = value
	return f
}

func (f FieldDef) WithDescription(desc string) FieldDef {
	f.Description = desc
	return f
}

func (f FieldDef) WithRange(min, max float64) FieldDef {
	f.Min = &min
	f.Max = &max
	return f
}

func Operation(name, displayName, description string, fields ...FieldDef) OperationDef {
	return OperationDef{
		Name:        name,
		DisplayName: displayName,
		Description: description,
		Fields:      fields,
	}
}

func (o OperationDef) WithOutput(desc string) OperationDef {
	o.OutputDescription = desc
	return o
}

func Resource(name, displayName, description string) ResourceDef {
	return ResourceDef{Name: name, DisplayName: displayName, Description: description}
}

// FindOperation returns the operation definition with the given name, if any.
func FindOperation(ops []OperationDef, name string) (OperationDef, bool) {
	for _, op := range ops {
		if op.Name == name {
			return op, true
		}
	}
	return OperationDef{}, false
}
