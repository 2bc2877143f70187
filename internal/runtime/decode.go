package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arenadata/sealctl/internal/api/meta"

	"gopkg.in/yaml.v3"
)

// Decode parses a single YAML document into the registered type for its apiVersion and kind.
// Unknown fields are tolerated: documents are produced by external tools that add metadata
// this program does not model.
func Decode(b []byte) (meta.Object, error) {
	tm := new(meta.TypeMeta)
	if err := yaml.Unmarshal(b, tm); err != nil {
		return nil, err
	}

	gvk := tm.GroupVersionKind()
	if gvk.Empty() {
		return nil, fmt.Errorf("apiVersion and kind must be set")
	}

	obj := reg.get(gvk)
	if obj == nil {
		return nil, fmt.Errorf("unknown kind %q for apiVersion %q", tm.Kind, tm.ApiVersion)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(obj); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return obj, nil
}

// DecodeInto decodes b and asserts the result to T.
func DecodeInto[T meta.Object](b []byte) (T, error) {
	var zero T
	obj, err := Decode(b)
	if err != nil {
		return zero, err
	}

	out, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("object is %T, want %T", obj, zero)
	}

	return out, nil
}
