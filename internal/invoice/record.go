package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// ExtractedField is one allow-listed value pulled from a recognized document.
type ExtractedField struct {
	Content    *string  `json:"content"`
	Confidence *float64 `json:"confidence"`
}

// DocumentRecord is the per-document output row. Fields holds only the allow-listed
// fields that were present; everything else encodes as null.
type DocumentRecord struct {
	DocumentNumber int
	Fields         map[constants.InvoiceField]*ExtractedField
}

// Field returns the extracted value for name, or nil when it was not detected.
func (r DocumentRecord) Field(name constants.InvoiceField) *ExtractedField {
	return r.Fields[name]
}

// MarshalJSON writes DocumentNumber followed by every allow-listed field in allow-list order.
func (r DocumentRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(strconv.Quote(constants.DocumentNumberKey))
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(r.DocumentNumber))

	for _, name := range constants.InvoiceFields {
		buf.WriteByte(',')
		key, err := encodeValue(string(name))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		f := r.Fields[name]
		if f == nil {
			buf.WriteString("null")
			continue
		}
		val, err := encodeValue(f)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads records written by MarshalJSON. Keys outside the allow-list are ignored.
func (r *DocumentRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	num, ok := raw[constants.DocumentNumberKey]
	if !ok {
		return fmt.Errorf("missing %s", constants.DocumentNumberKey)
	}
	if err := json.Unmarshal(num, &r.DocumentNumber); err != nil {
		return fmt.Errorf("decode %s: %w", constants.DocumentNumberKey, err)
	}

	r.Fields = make(map[constants.InvoiceField]*ExtractedField)
	for _, name := range constants.InvoiceFields {
		v, ok := raw[string(name)]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		var f ExtractedField
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		r.Fields[name] = &f
	}
	return nil
}

// MarshalRecords encodes records as a 2-space indented JSON array without HTML or
// non-ASCII escaping and without a trailing newline. No records encode as [].
func MarshalRecords(records []DocumentRecord) ([]byte, error) {
	if records == nil {
		records = []DocumentRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return unescapeLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unescapeLineSeparators writes U+2028 and U+2029 as raw runes. encoding/json
// always escapes them, even with HTML escaping off. An escaped backslash followed
// by "u2028" is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		switch rest := data[i+1:]; {
		case bytes.HasPrefix(rest, []byte("u2028")):
			out = append(out, "\u2028"...)
			i += 5
		case bytes.HasPrefix(rest, []byte("u2029")):
			out = append(out, "\u2029"...)
			i += 5
		default:
			// copy both bytes so the next byte is never read as a new escape
			out = append(out, data[i], data[i+1])
			i++
		}
	}
	return out
}

// UnmarshalRecords is the inverse of MarshalRecords.
func UnmarshalRecords(data []byte) ([]DocumentRecord, error) {
	var out []DocumentRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if out == nil {
		out = []DocumentRecord{}
	}
	return out, nil
}

func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
