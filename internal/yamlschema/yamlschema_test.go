package yamlschema

import (
	"testing"
)

const testSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {"name": {"type": "string"}, "size": {"type": "integer"}}
}`

func TestValidate(t *testing.T) {
	schema, err := Compile("test.json", []byte(testSchema))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid", doc: "name: glass\nsize: 3\n"},
		{name: "missing required", doc: "size: 3\n", wantErr: true},
		{name: "wrong type", doc: "name: glass\nsize: big\n", wantErr: true},
		{name: "not yaml", doc: "name: [unclosed", wantErr: true},
		{name: "non-string keys", doc: "name: glass\n1: 2\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate([]byte(tt.doc))
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestCompileInvalid(t *testing.T) {
	if _, err := Compile("bad.json", []byte(`{"type": 12}`)); err == nil {
		t.Error("Expected compile error for invalid schema")
	}
}
