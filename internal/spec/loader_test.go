package spec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const refDocJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Ref API", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "post": {
        "operationId": "createPet",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/Pet"}
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "properties": {"name": {"type": "string"}},
        "required": ["name"]
      }
    }
  }
}`

func TestLoadFromData(t *testing.T) {
	doc, err := LoadFromData(t.Context(), []byte(refDocJSON))
	if err != nil {
		t.Fatalf("failed to load document: %v", err)
	}
	if doc.Info.Title != "Ref API" {
		t.Errorf("unexpected title: %q", doc.Info.Title)
	}
	if doc.Paths.Len() != 1 {
		t.Errorf("expected 1 path, got %d", doc.Paths.Len())
	}
}

func TestLoadFromData_ResolvesReferences(t *testing.T) {
	doc, err := LoadFromData(t.Context(), []byte(refDocJSON))
	if err != nil {
		t.Fatalf("failed to load document: %v", err)
	}

	op := doc.Paths.Find("/pets").Post
	if op == nil {
		t.Fatal("expected POST /pets operation")
	}
	schema := op.RequestBody.Value.Content["application/json"].Schema
	if schema.Value == nil {
		t.Fatal("expected $ref to be resolved at load time")
	}
	if _, ok := schema.Value.Properties["name"]; !ok {
		t.Error("expected resolved Pet schema with name property")
	}
}

func TestLoadFromData_RejectsNon3x(t *testing.T) {
	doc := `{"openapi": "2.0", "info": {"title": "Old", "version": "1"}, "paths": {}}`
	_, err := LoadFromData(t.Context(), []byte(doc))
	if err == nil {
		t.Fatal("expected error for non-3.x document")
	}
	if !strings.Contains(err.Error(), "unsupported OpenAPI version") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.json")
	if err := os.WriteFile(path, []byte(refDocJSON), 0o644); err != nil {
		t.Fatalf("failed to write spec file: %v", err)
	}

	doc, err := Load(t.Context(), path)
	if err != nil {
		t.Fatalf("failed to load document from file: %v", err)
	}
	if doc.Info.Title != "Ref API" {
		t.Errorf("unexpected title: %q", doc.Info.Title)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.Context(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing spec file")
	}
}
