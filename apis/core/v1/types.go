package v1

import (
	"github.com/arenadata/sealctl/internal/api/meta"
	"github.com/arenadata/sealctl/internal/runtime"
)

const (
	GroupName = ""
	Version   = "v1"
)

const (
	SecretTypeOpaque           = "Opaque"
	SecretTypeTLS              = "kubernetes.io/tls"
	SecretTypeDockerConfigJson = "kubernetes.io/dockerconfigjson"

	TLSCertKey          = "tls.crt"
	TLSPrivateKeyKey    = "tls.key"
	DockerConfigJsonKey = ".dockerconfigjson"
)

func init() {
	runtime.Register(runtime.GroupVersion{Group: GroupName, Version: Version}, &Secret{})
}

// Secret is the plaintext object handed to the sealing gateway. Data values are base64 encoded.
type Secret struct {
	meta.TypeMeta   `json:",inline" yaml:",inline"`
	meta.ObjectMeta `json:"metadata" yaml:"metadata"`
	Type            string            `json:"type,omitempty" yaml:"type,omitempty"`
	Data            map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
	StringData      map[string]string `json:"stringData,omitempty" yaml:"stringData,omitempty"`
	Immutable       *bool             `json:"immutable,omitempty" yaml:"immutable,omitempty"`
}

func NewSecret(namespace, name, secretType string) *Secret {
	return &Secret{
		TypeMeta: meta.NewTypeMeta(meta.GroupVersionKind{Group: GroupName, Version: Version, Kind: "Secret"}),
		ObjectMeta: meta.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Type: secretType,
		Data: make(map[string]string),
	}
}
