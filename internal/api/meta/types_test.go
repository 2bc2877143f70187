package meta

import (
	"strings"
	"testing"
)

func TestTypeMeta_GroupVersionKind(t *testing.T) {
	tests := []struct {
		name       string
		apiVersion string
		want       GroupVersionKind
	}{
		{"Core", "v1", GroupVersionKind{Version: "v1", Kind: "Secret"}},
		{"Grouped", "bitnami.com/v1alpha1", GroupVersionKind{Group: "bitnami.com", Version: "v1alpha1", Kind: "Secret"}},
		{"Empty", "", GroupVersionKind{}},
		{"Slash", "/", GroupVersionKind{}},
		{"TooManyParts", "a/b/c", GroupVersionKind{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TypeMeta{ApiVersion: tt.apiVersion, Kind: "Secret"}.GroupVersionKind()
			if got != tt.want {
				t.Errorf("GroupVersionKind() = %v, want %v", got, tt.want)
			}
			if !got.Empty() && got.ApiVersion() != tt.apiVersion {
				t.Errorf("ApiVersion() = %v, want %v", got.ApiVersion(), tt.apiVersion)
			}
		})
	}
}

func TestObjectMeta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    ObjectMeta
		wantErr bool
	}{
		{"Valid", ObjectMeta{Name: "db-credentials", Namespace: "payments"}, false},
		{"EmptyName", ObjectMeta{Namespace: "payments"}, true},
		{"EmptyNamespace", ObjectMeta{Name: "db"}, true},
		{"UpperCase", ObjectMeta{Name: "DB", Namespace: "payments"}, true},
		{"TrailingDash", ObjectMeta{Name: "db-", Namespace: "payments"}, true},
		{"TooLong", ObjectMeta{Name: strings.Repeat("a", 64), Namespace: "payments"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.meta.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
