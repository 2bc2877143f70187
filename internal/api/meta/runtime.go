package meta

// Object is a document identified by its apiVersion and kind.
type Object interface {
	GroupVersionKind() GroupVersionKind
}

type GroupVersionKind struct {
	Group   string
	Version string
	Kind    string
}

func (gvk GroupVersionKind) Empty() bool {
	return len(gvk.Version) == 0 && len(gvk.Kind) == 0
}

func (gvk GroupVersionKind) ApiVersion() string {
	if len(gvk.Group) == 0 {
		return gvk.Version
	}
	return gvk.Group + "/" + gvk.Version
}
