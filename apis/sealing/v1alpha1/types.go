package v1alpha1

import (
	"github.com/arenadata/sealctl/internal/api/meta"
	"github.com/arenadata/sealctl/internal/runtime"
)

const (
	GroupName = "bitnami.com"
	Version   = "v1alpha1"
)

var SealedSecretGVK = meta.GroupVersionKind{Group: GroupName, Version: Version, Kind: "SealedSecret"}

func init() {
	runtime.Register(runtime.GroupVersion{Group: GroupName, Version: Version}, &SealedSecret{})
}

// SealedSecret is the encrypted manifest committed to the repository.
type SealedSecret struct {
	meta.TypeMeta   `json:",inline" yaml:",inline"`
	meta.ObjectMeta `json:"metadata" yaml:"metadata"`
	Spec            SealedSecretSpec `json:"spec" yaml:"spec"`
}

type SealedSecretSpec struct {
	Template      SecretTemplateSpec `json:"template" yaml:"template"`
	EncryptedData map[string]string  `json:"encryptedData" yaml:"encryptedData"`
}

type SecretTemplateSpec struct {
	meta.ObjectMeta `json:"metadata" yaml:"metadata"`
	Type            string `json:"type,omitempty" yaml:"type,omitempty"`
	Immutable       *bool  `json:"immutable,omitempty" yaml:"immutable,omitempty"`
}

func NewSealedSecret(namespace, name string) *SealedSecret {
	return &SealedSecret{
		TypeMeta: meta.NewTypeMeta(SealedSecretGVK),
		ObjectMeta: meta.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: SealedSecretSpec{
			Template: SecretTemplateSpec{
				ObjectMeta: meta.ObjectMeta{Name: name, Namespace: namespace},
			},
			EncryptedData: make(map[string]string),
		},
	}
}

// Validate reports whether the manifest is complete enough to be reconciled.
func (s *SealedSecret) Validate() error {
	if s.GroupVersionKind() != SealedSecretGVK {
		return errInvalid("unexpected apiVersion/kind %s/%s", s.ApiVersion, s.Kind)
	}
	if len(s.Name) == 0 || len(s.Namespace) == 0 {
		return errInvalid("metadata.name and metadata.namespace must be set")
	}
	if s.Spec.EncryptedData == nil {
		return errInvalid("spec.encryptedData must be a mapping")
	}
	return nil
}
