// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package processor

import (
	"fmt"

	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
)

// checkOwnership verifies the storage slot's owner identity matches the
// executing program's identity. This runs before any mutation.
func checkOwnership(
	record *host.AccountRef,
	programID ledger.Identity,
) error {
	if record.Owner != programID {
		return fmt.Errorf(
			"%w: owner %s, program %s",
			ErrOwnership,
			record.Owner,
			programID,
		)
	}
	return nil
}

// requireSigner verifies the designated account actually produced a valid
// signature for this invocation
func requireSigner(ref *host.AccountRef, role string) error {
	if !ref.Signer {
		return fmt.Errorf("%w: %s %s", ErrMissingSignature, role, ref.Key)
	}
	return nil
}

// requireAdmin verifies the account is a signer whose identity equals the
// stored admin identity. A signer with the wrong identity is an
// authorization failure, distinct from a wrong record owner.
func requireAdmin(ref *host.AccountRef, admin ledger.Identity) error {
	if err := requireSigner(ref, "admin"); err != nil {
		return err
	}
	if ref.Key != admin {
		return fmt.Errorf(
			"%w: signer %s is not the admin",
			ErrAuthorization,
			ref.Key,
		)
	}
	return nil
}
