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
	"github.com/blinklabs-io/quill/event"
	"github.com/blinklabs-io/quill/instruction"
	"github.com/blinklabs-io/quill/ledger"
)

const (
	MemberJoinedEventType       event.EventType = "membership.member_joined"
	ClaimSubmittedEventType     event.EventType = "claims.claim_submitted"
	ClaimVerifiedEventType      event.EventType = "claims.claim_verified"
	ProposalCreatedEventType    event.EventType = "governance.proposal_created"
	VoteCastEventType           event.EventType = "governance.vote_cast"
	ProposalFinalizedEventType  event.EventType = "governance.proposal_finalized"
	DocumentsSubmittedEventType event.EventType = "compliance.documents_submitted"
	ComplianceUpdatedEventType  event.EventType = "compliance.status_updated"
	ClaimLimitUpdatedEventType  event.EventType = "compliance.claim_limit_updated"
	TokensMintedEventType       event.EventType = "treasury.tokens_minted"
	TokensTransferredEventType  event.EventType = "treasury.tokens_transferred"
	TokensBurnedEventType       event.EventType = "treasury.tokens_burned"
	DisputeSubmittedEventType   event.EventType = "disputes.dispute_submitted"
	DisputeVoteCastEventType    event.EventType = "disputes.vote_cast"
	DisputeClosedEventType      event.EventType = "disputes.dispute_closed"
)

type MemberJoinedEvent struct {
	Member   ledger.Identity
	JoinedAt int64
}

type ClaimSubmittedEvent struct {
	ClaimId uint64
	Member  ledger.Identity
	Amount  uint64
}

type ClaimVerifiedEvent struct {
	ClaimId  uint64
	Verified bool
}

type ProposalCreatedEvent struct {
	ProposalId uint64
	Proposer   ledger.Identity
	VoteEnd    int64
}

type VoteCastEvent struct {
	ProposalId uint64
	Voter      ledger.Identity
	Choice     instruction.VoteChoice
	Weight     uint64
}

type ProposalFinalizedEvent struct {
	ProposalId uint64
	Status     ledger.ProposalStatus
	YesVotes   uint64
	NoVotes    uint64
}

type DocumentsSubmittedEvent struct {
	Member ledger.Identity
}

type ComplianceUpdatedEvent struct {
	Member    ledger.Identity
	KycStatus ledger.ComplianceStatus
	AmlStatus ledger.ComplianceStatus
}

type ClaimLimitUpdatedEvent struct {
	NewLimit uint64
}

type TokensMintedEvent struct {
	Destination ledger.Identity
	Amount      uint64
	TotalSupply uint64
}

type TokensTransferredEvent struct {
	Source      ledger.Identity
	Destination ledger.Identity
	Amount      uint64
}

type TokensBurnedEvent struct {
	Account     ledger.Identity
	Amount      uint64
	TotalSupply uint64
}

type DisputeSubmittedEvent struct {
	DisputeId  uint64
	Initiator  ledger.Identity
	Respondent ledger.Identity
}

type DisputeVoteCastEvent struct {
	DisputeId uint64
	Voter     ledger.Identity
	Support   bool
}

type DisputeClosedEvent struct {
	DisputeId    uint64
	InFavor      bool
	SupportVotes uint64
	TotalVotes   uint64
}
