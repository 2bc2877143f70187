package runtime

import (
	"fmt"
	"reflect"

	"github.com/arenadata/sealctl/internal/api/meta"
)

var reg *register

func init() {
	reg = &register{
		gvk: make(map[meta.GroupVersionKind]reflect.Type),
	}
}

type GroupVersion struct {
	Group   string
	Version string
}

type register struct {
	gvk map[meta.GroupVersionKind]reflect.Type
}

func (r *register) register(gvk meta.GroupVersionKind, obj meta.Object) {
	t := reflect.TypeOf(obj)
	if t.Kind() != reflect.Pointer {
		panic(fmt.Sprintf("object must be a pointer, got %T", obj))
	}
	r.gvk[gvk] = t.Elem()
}

func (r *register) get(gvk meta.GroupVersionKind) meta.Object {
	t, ok := r.gvk[gvk]
	if !ok {
		return nil
	}

	return reflect.New(t).Interface().(meta.Object)
}

// Register makes obj decodable under gv. The kind is the Go type name of obj.
func Register(gv GroupVersion, obj meta.Object) {
	kind := reflect.TypeOf(obj).Elem().Name()
	reg.register(meta.GroupVersionKind{Group: gv.Group, Version: gv.Version, Kind: kind}, obj)
}

func IsRegistered(gvk meta.GroupVersionKind) bool {
	_, ok := reg.gvk[gvk]
	return ok
}
