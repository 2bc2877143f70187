package meta

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	dns1123LabelFmt    = `^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`
	dns1123LabelMaxLen = 63
)

var dns1123Label = regexp.MustCompile(dns1123LabelFmt)

type TypeMeta struct {
	ApiVersion string `json:"apiVersion" yaml:"apiVersion"`
	Kind       string `json:"kind" yaml:"kind"`
}

type ObjectMeta struct {
	Name              string            `json:"name" yaml:"name"`
	Namespace         string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	CreationTimestamp *string           `json:"creationTimestamp,omitempty" yaml:"creationTimestamp,omitempty"`
	Labels            map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations       map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

func (m TypeMeta) GroupVersionKind() GroupVersionKind {
	if len(m.ApiVersion) == 0 || m.ApiVersion == "/" {
		return GroupVersionKind{}
	}

	gvk := GroupVersionKind{Kind: m.Kind}
	gv := strings.Split(m.ApiVersion, "/")
	switch len(gv) {
	case 1:
		gvk.Version = gv[0]
	case 2:
		gvk.Group = gv[0]
		gvk.Version = gv[1]
	default:
		return GroupVersionKind{}
	}

	return gvk
}

func NewTypeMeta(gvk GroupVersionKind) TypeMeta {
	return TypeMeta{ApiVersion: gvk.ApiVersion(), Kind: gvk.Kind}
}

// Validate checks that both name and namespace are DNS-1123 labels.
func (m ObjectMeta) Validate() error {
	if err := ValidateLabel("name", m.Name); err != nil {
		return err
	}
	return ValidateLabel("namespace", m.Namespace)
}

func ValidateLabel(field, value string) error {
	if len(value) > dns1123LabelMaxLen {
		return fmt.Errorf("the %s must be no longer than %d characters", field, dns1123LabelMaxLen)
	}
	if !dns1123Label.MatchString(value) {
		return fmt.Errorf("invalid %s: %q. Regex used for validation is %q", field, value, dns1123LabelFmt)
	}
	return nil
}
