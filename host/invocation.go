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

package host

import (
	"errors"

	"github.com/blinklabs-io/quill/ledger"
)

// AccountRef is a positional account reference supplied by the host for
// one instruction. The host has already resolved the account and
// collected signature evidence; the engine only reads what's here.
type AccountRef struct {
	Data     []byte
	Key      ledger.Identity
	Owner    ledger.Identity
	Signer   bool
	Writable bool
}

// Invocation is one instruction's worth of work: the executing program's
// identity, the positional account references (ledger record always
// first), and the raw instruction bytes
type Invocation struct {
	Data      []byte
	Accounts  []AccountRef
	ProgramID ledger.Identity
}

// ErrAccountMissing indicates an instruction referenced fewer accounts
// than its operation requires
var ErrAccountMissing = errors.New("required account reference missing")

// AccountIter walks an invocation's account references in positional
// order, mirroring how the host supplies them
type AccountIter struct {
	inv *Invocation
	pos int
}

// Accounts returns an iterator over the invocation's account references
func (i *Invocation) AccountIter() *AccountIter {
	return &AccountIter{inv: i}
}

// Next returns the next positional account reference
func (it *AccountIter) Next() (*AccountRef, error) {
	if it.pos >= len(it.inv.Accounts) {
		return nil, ErrAccountMissing
	}
	ret := &it.inv.Accounts[it.pos]
	it.pos++
	return ret, nil
}
