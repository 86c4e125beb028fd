// Package groundtruth loads reference transcriptions and field values used to
// score extraction quality.
package groundtruth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Record is the expected output for one logical document.
type Record struct {
	FullText string            `json:"full_text"`
	Fields   map[string]string `json:"fields"`
}

const recordSchema = `{
  "type": "object",
  "required": ["full_text"],
  "properties": {
    "full_text": {"type": "string"}
  }
}`

const fieldsSchema = `{
  "type": "object",
  "additionalProperties": {"type": "string"}
}`

var (
	schemasOnce sync.Once
	schemas     struct {
		record *jsonschema.Schema
		fields *jsonschema.Schema
		err    error
	}
)

func compileSchemas() {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", strings.NewReader(recordSchema)); err != nil {
			schemas.err = fmt.Errorf("add record schema: %w", err)
			return
		}
		if err := compiler.AddResource("fields.json", strings.NewReader(fieldsSchema)); err != nil {
			schemas.err = fmt.Errorf("add fields schema: %w", err)
			return
		}
		if schemas.record, schemas.err = compiler.Compile("record.json"); schemas.err != nil {
			return
		}
		schemas.fields, schemas.err = compiler.Compile("fields.json")
	})
}

// ParseRecord validates and decodes one ground-truth JSON object. A record
// without a string full_text is rejected. A fields value that is not an
// object of strings decodes to an empty field set, and ok reports false for
// it so callers can log the downgrade.
func ParseRecord(data []byte) (rec Record, fieldsOK bool, err error) {
	compileSchemas()
	if schemas.err != nil {
		return Record{}, false, schemas.err
	}

	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Record{}, false, fmt.Errorf("decode record: %w", err)
	}
	if err := schemas.record.Validate(doc); err != nil {
		return Record{}, false, fmt.Errorf("record does not match schema: %w", err)
	}

	rec.FullText, _ = doc["full_text"].(string)
	rec.Fields, fieldsOK = parseFieldsValue(doc["fields"])
	return rec, fieldsOK, nil
}

// ParseFields decodes a standalone fields document (e.g. a jsonb column).
func ParseFields(data []byte) (map[string]string, bool) {
	compileSchemas()
	if schemas.err != nil || len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, false
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return map[string]string{}, false
	}
	return parseFieldsValue(v)
}

func parseFieldsValue(v any) (map[string]string, bool) {
	out := map[string]string{}
	if v == nil {
		return out, true
	}
	if err := schemas.fields.Validate(v); err != nil {
		return out, false
	}
	for k, val := range v.(map[string]any) {
		out[k] = val.(string)
	}
	return out, true
}
