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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"

	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
)

// LedgerNode is the node surface the API server depends on
type LedgerNode interface {
	SubmitInstruction(
		ctx context.Context,
		recordKey ledger.Identity,
		accounts []host.AccountRef,
		data []byte,
	) error
	Aggregate(recordKey ledger.Identity) (*ledger.Aggregate, error)
}
