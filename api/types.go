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
	"errors"
	"net/http"

	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/instruction"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/blinklabs-io/quill/processor"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the error body for failed requests
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// AccountRefRequest is one positional account reference in a submitted
// instruction
type AccountRefRequest struct {
	Key    string `json:"key"`
	Data   string `json:"data,omitempty"`
	Signer bool   `json:"signer"`
}

// SubmitInstructionRequest is the body for POST /api/v0/instructions
type SubmitInstructionRequest struct {
	Record   string              `json:"record"`
	Data     string              `json:"data"`
	Accounts []AccountRefRequest `json:"accounts"`
}

// SubmitInstructionResponse is returned on successful submission
type SubmitInstructionResponse struct {
	Applied bool `json:"applied"`
}

// MemberResponse mirrors one enrolled member
type MemberResponse struct {
	Address  string `json:"address"`
	JoinedAt int64  `json:"joined_at"`
}

// ClaimResponse mirrors one expense claim
type ClaimResponse struct {
	Member   string `json:"member"`
	Id       uint64 `json:"id"`
	Amount   uint64 `json:"amount"`
	Verified bool   `json:"verified"`
}

// ProposalResponse mirrors one governance proposal
type ProposalResponse struct {
	Proposer    string `json:"proposer"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Id          uint64 `json:"id"`
	VoteStart   int64  `json:"vote_start"`
	VoteEnd     int64  `json:"vote_end"`
	YesVotes    uint64 `json:"yes_votes"`
	NoVotes     uint64 `json:"no_votes"`
}

// DisputeVoteResponse mirrors one ballot on a dispute
type DisputeVoteResponse struct {
	Voter   string `json:"voter"`
	Support bool   `json:"support"`
}

// DisputeResponse mirrors one member-raised dispute
type DisputeResponse struct {
	Initiator   string                `json:"initiator"`
	Respondent  string                `json:"respondent"`
	Description string                `json:"description"`
	Status      string                `json:"status"`
	Votes       []DisputeVoteResponse `json:"votes"`
	ClaimId     *uint64               `json:"claim_id,omitempty"`
	Id          uint64                `json:"id"`
}

// ComplianceResponse mirrors one member compliance record
type ComplianceResponse struct {
	Member    string `json:"member"`
	KycStatus string `json:"kyc_status"`
	AmlStatus string `json:"aml_status"`
}

// LedgerRecordResponse is the decoded aggregate returned by
// GET /api/v0/ledger/{key}
type LedgerRecordResponse struct {
	Admin       string               `json:"admin"`
	Treasury    string               `json:"treasury"`
	Members     []MemberResponse     `json:"members"`
	Claims      []ClaimResponse      `json:"claims"`
	Proposals   []ProposalResponse   `json:"proposals"`
	Compliance  []ComplianceResponse `json:"compliance"`
	Disputes    []DisputeResponse    `json:"disputes"`
	TotalSupply *uint64              `json:"total_supply,omitempty"`
	ClaimLimit  uint64               `json:"claim_limit"`
}

// errorKind maps an instruction-processing error to its taxonomy name
// and HTTP status. The error kind is surfaced verbatim so clients can
// distinguish failure causes.
func errorKind(err error) (string, int) {
	switch {
	case errors.Is(err, processor.ErrOwnership):
		return "OwnershipError", http.StatusForbidden
	case errors.Is(err, processor.ErrMissingSignature):
		return "MissingSignatureError", http.StatusForbidden
	case errors.Is(err, processor.ErrAuthorization):
		return "AuthorizationError", http.StatusForbidden
	case errors.Is(err, processor.ErrCompliance):
		return "ComplianceError", http.StatusForbidden
	case errors.Is(err, processor.ErrNotFound),
		errors.Is(err, host.ErrSlotNotFound):
		return "NotFoundError", http.StatusNotFound
	case errors.Is(err, processor.ErrValidation):
		return "ValidationError", http.StatusBadRequest
	case errors.Is(err, instruction.ErrUnknownOperation):
		return "UnknownOperationError", http.StatusBadRequest
	case errors.Is(err, processor.ErrArithmetic):
		return "ArithmeticError", http.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrInvalidState):
		return "InvalidStateError", http.StatusConflict
	case errors.Is(err, ledger.ErrDecode):
		return "DecodeError", http.StatusInternalServerError
	case errors.Is(err, ledger.ErrCapacity):
		return "CapacityError", http.StatusInsufficientStorage
	default:
		return "InternalError", http.StatusInternalServerError
	}
}
