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

import "errors"

// Every error aborts the instruction immediately and is surfaced
// verbatim to the caller; the ledger record is left byte-for-byte
// unchanged after any failure.
var (
	// ErrOwnership indicates the storage slot is not owned by this program
	ErrOwnership = errors.New("record not owned by this program")
	// ErrMissingSignature indicates a required signer did not sign this invocation
	ErrMissingSignature = errors.New("required signature missing")
	// ErrAuthorization indicates the signer is present but lacks the required role
	ErrAuthorization = errors.New("signer lacks required role")
	// ErrNotFound indicates a claim, proposal, or compliance record is absent
	ErrNotFound = errors.New("record not found")
	// ErrValidation indicates a malformed payload, an out-of-window vote, or an invalid enum code
	ErrValidation = errors.New("validation failure")
	// ErrArithmetic indicates overflow or underflow in supply or vote tallies
	ErrArithmetic = errors.New("arithmetic overflow or underflow")
	// ErrInvalidState indicates an operation that requires a subsystem the aggregate was not initialized with
	ErrInvalidState = errors.New("required subsystem not configured")
	// ErrCompliance indicates the compliance gate check failed
	ErrCompliance = errors.New("compliance gate failed")
)
