// Package codec encodes persisted reports.
//
// A report file is a JSON document, optionally wrapped in a whole-file
// compression frame. Decode detects the frame from its magic bytes, so a
// directory may mix plain and compressed files.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// Encode marshals v with c and compresses the result with comp.
func Encode(c Codec, comp Compression, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec %s marshal: %w", c.Name(), err)
	}
	return Compress(data, comp)
}

// Decode decompresses data if it carries a compression frame and unmarshals
// the result into v with c.
func Decode(c Codec, data []byte, v any) error {
	if c == nil {
		c = Default
	}
	plain, err := Decompress(data)
	if err != nil {
		return err
	}
	if err := c.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("codec %s unmarshal: %w", c.Name(), err)
	}
	return nil
}
