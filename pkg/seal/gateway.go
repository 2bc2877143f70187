/*
 Copyright (c) 2025 Arenadata Softwer LLC.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package seal turns plaintext Secret objects into encrypted SealedSecret manifests.
package seal

import (
	"context"

	"github.com/arenadata/sealctl/pkg/descriptor"
)

// Gateway is the sealing service. Implementations wrap their failures in errdefs.ErrGateway.
type Gateway interface {
	// FetchPublicKey returns the current public sealing key of env.
	FetchPublicKey(ctx context.Context, env descriptor.Environment) ([]byte, error)
	// Seal encrypts secret with the stored public key of env. With allowEmptyData a Secret
	// without data produces a manifest with an empty encryptedData mapping.
	Seal(ctx context.Context, secret []byte, env descriptor.Environment, allowEmptyData bool) ([]byte, error)
}
