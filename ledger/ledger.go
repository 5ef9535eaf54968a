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

package ledger

import (
	"encoding/hex"
	"fmt"
)

// IdentitySize is the size in bytes of a participant identity
const IdentitySize = 32

// Identity is an opaque public cryptographic identifier naming a participant
type Identity [IdentitySize]byte

func (i Identity) String() string {
	return hex.EncodeToString(i[:])
}

func (i Identity) IsZero() bool {
	return i == Identity{}
}

// IdentityFromBytes builds an Identity from a raw byte slice
func IdentityFromBytes(data []byte) (Identity, error) {
	var ret Identity
	if len(data) != IdentitySize {
		return ret, fmt.Errorf(
			"invalid identity length: expected %d, got %d",
			IdentitySize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// IdentityFromHex parses a hex-encoded Identity
func IdentityFromHex(s string) (Identity, error) {
	var ret Identity
	data, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("invalid identity hex: %w", err)
	}
	return IdentityFromBytes(data)
}

// Member records a participant enrolled in the organization. Members are
// append-only and never mutated or removed. Duplicate enrollment of the
// same identity is allowed.
type Member struct {
	Address  Identity
	JoinedAt int64
}

// Claim is an expense claim submitted by a member. The id equals the
// claim's position in the claim sequence at creation time and never
// changes afterward.
type Claim struct {
	Id       uint64
	Member   Identity
	Amount   uint64
	Verified bool
}

type ProposalStatus uint8

const (
	ProposalPending  ProposalStatus = 0
	ProposalActive   ProposalStatus = 1
	ProposalPassed   ProposalStatus = 2
	ProposalRejected ProposalStatus = 3
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalPending:
		return "pending"
	case ProposalActive:
		return "active"
	case ProposalPassed:
		return "passed"
	case ProposalRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(s))
	}
}

// Proposal is a governance proposal with a token-weighted vote tally.
// Proposals are created Active; they transition to Passed or Rejected
// only as a side effect of a vote cast after the voting window closes.
type Proposal struct {
	Id          uint64
	Proposer    Identity
	Description string
	VoteStart   int64
	VoteEnd     int64
	YesVotes    uint64
	NoVotes     uint64
	Status      ProposalStatus
}

type ComplianceStatus uint8

const (
	CompliancePending  ComplianceStatus = 0
	ComplianceApproved ComplianceStatus = 1
	ComplianceRejected ComplianceStatus = 2
)

func (s ComplianceStatus) String() string {
	switch s {
	case CompliancePending:
		return "pending"
	case ComplianceApproved:
		return "approved"
	case ComplianceRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(s))
	}
}

// MemberCompliance tracks a member's KYC and AML adjudication. One record
// per member, looked up by identity equality with first match winning.
type MemberCompliance struct {
	Member    Identity
	KycStatus ComplianceStatus
	AmlStatus ComplianceStatus
}

type DisputeStatus uint8

const (
	DisputeOpen   DisputeStatus = 0
	DisputeClosed DisputeStatus = 1
)

func (s DisputeStatus) String() string {
	switch s {
	case DisputeOpen:
		return "open"
	case DisputeClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(s))
	}
}

// DisputeVote is one member's ballot on a dispute. Support is true when
// the voter sides with the initiator.
type DisputeVote struct {
	Voter   Identity
	Support bool
}

// Dispute is a member-raised grievance put to a membership vote. Each
// voter may vote at most once; the dispute closes automatically once
// enough votes are recorded.
type Dispute struct {
	Id          uint64
	ClaimId     *uint64
	Initiator   Identity
	Respondent  Identity
	Description string
	Status      DisputeStatus
	Votes       []DisputeVote
}

// HasVoted reports whether the given identity has already voted on this
// dispute
func (d *Dispute) HasVoted(voter Identity) bool {
	for _, v := range d.Votes {
		if v.Voter == voter {
			return true
		}
	}
	return false
}

// TokenManagement carries local total-supply accounting for the external
// token sub-ledger. It's optional: aggregates initialized without token
// support reject treasury operations.
type TokenManagement struct {
	TotalSupply uint64
}

// Aggregate is the full persisted state of the organization. It is
// reconstructed from storage for every instruction and fully rewritten
// (or left untouched on error) when processing completes.
type Aggregate struct {
	Admin            Identity
	Treasury         Identity
	Members          []Member
	Claims           []Claim
	Proposals        []Proposal
	MemberCompliance []MemberCompliance
	TokenManagement  *TokenManagement
	// ClaimLimit caps the claim amount that verification will accept.
	// Zero means no limit.
	ClaimLimit uint64
	Disputes   []Dispute
}

// NewAggregate builds an empty aggregate for the given admin and treasury
// identities. Token support is enabled by passing withTokens.
func NewAggregate(
	admin Identity,
	treasury Identity,
	withTokens bool,
) *Aggregate {
	a := &Aggregate{
		Admin:    admin,
		Treasury: treasury,
	}
	if withTokens {
		a.TokenManagement = &TokenManagement{}
	}
	return a
}

// ComplianceRecord returns the compliance record for the given member, or
// nil if the member has never submitted documents. Lookup is a linear
// scan with first match winning.
func (a *Aggregate) ComplianceRecord(member Identity) *MemberCompliance {
	for idx := range a.MemberCompliance {
		if a.MemberCompliance[idx].Member == member {
			return &a.MemberCompliance[idx]
		}
	}
	return nil
}
