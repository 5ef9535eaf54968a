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
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/blinklabs-io/quill/event"
	"github.com/blinklabs-io/quill/instruction"
	"github.com/blinklabs-io/quill/ledger"
)

// GovernanceManager handles proposal creation and token-weighted voting
type GovernanceManager struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	tokens   TokenLedger
}

// CreateProposal appends a new Active proposal whose voting window opens
// at the current oracle time
func (g *GovernanceManager) CreateProposal(
	agg *ledger.Aggregate,
	proposer ledger.Identity,
	description string,
	durationSeconds int64,
	now int64,
) (ledger.Proposal, error) {
	if durationSeconds <= 0 {
		return ledger.Proposal{}, fmt.Errorf(
			"%w: proposal duration must be positive, got %d",
			ErrValidation,
			durationSeconds,
		)
	}
	proposal := ledger.Proposal{
		Id:          uint64(len(agg.Proposals)),
		Proposer:    proposer,
		Description: description,
		VoteStart:   now,
		VoteEnd:     now + durationSeconds,
		Status:      ledger.ProposalActive,
	}
	agg.Proposals = append(agg.Proposals, proposal)
	g.logger.Info(
		"proposal created",
		"component", "governance",
		"proposal_id", proposal.Id,
		"proposer", proposer.String(),
		"vote_end", proposal.VoteEnd,
	)
	if g.eventBus != nil {
		g.eventBus.Publish(
			ProposalCreatedEventType,
			event.NewEvent(
				ProposalCreatedEventType,
				ProposalCreatedEvent{
					ProposalId: proposal.Id,
					Proposer:   proposer,
					VoteEnd:    proposal.VoteEnd,
				},
			),
		)
	}
	return proposal, nil
}

// Vote casts the voter's full token balance as weight on a proposal.
// No record of prior votes is kept, so the same voter can cast weight
// again on a later invocation.
//
// A vote processed after the window closes is still tallied and then
// finalizes the proposal: Passed when yes outweighs no, Rejected
// otherwise (ties reject). A proposal that receives no vote after its
// window closes never finalizes. Votes before the window opens, or on a
// proposal already finalized, fail validation.
func (g *GovernanceManager) Vote(
	ctx context.Context,
	agg *ledger.Aggregate,
	proposalIndex uint64,
	voter ledger.Identity,
	choice instruction.VoteChoice,
	now int64,
) error {
	if proposalIndex >= uint64(len(agg.Proposals)) {
		return fmt.Errorf("%w: proposal %d", ErrNotFound, proposalIndex)
	}
	proposal := &agg.Proposals[proposalIndex]
	if now < proposal.VoteStart {
		return fmt.Errorf(
			"%w: voting opens at %d, now %d",
			ErrValidation,
			proposal.VoteStart,
			now,
		)
	}
	if proposal.Status != ledger.ProposalActive {
		return fmt.Errorf(
			"%w: proposal %d already finalized (%s)",
			ErrValidation,
			proposal.Id,
			proposal.Status,
		)
	}
	// Vote weight is the voter's token balance at call time
	weight, err := g.tokens.BalanceOf(ctx, voter)
	if err != nil {
		return fmt.Errorf("reading vote weight: %w", err)
	}
	switch choice {
	case instruction.VoteYes:
		if proposal.YesVotes > math.MaxUint64-weight {
			return fmt.Errorf("%w: yes tally overflow", ErrArithmetic)
		}
		proposal.YesVotes += weight
	case instruction.VoteNo:
		if proposal.NoVotes > math.MaxUint64-weight {
			return fmt.Errorf("%w: no tally overflow", ErrArithmetic)
		}
		proposal.NoVotes += weight
	default:
		return fmt.Errorf("%w: invalid vote choice %d", ErrValidation, choice)
	}
	g.logger.Info(
		"vote cast",
		"component", "governance",
		"proposal_id", proposal.Id,
		"voter", voter.String(),
		"choice", choice.String(),
		"weight", weight,
	)
	if g.eventBus != nil {
		g.eventBus.Publish(
			VoteCastEventType,
			event.NewEvent(
				VoteCastEventType,
				VoteCastEvent{
					ProposalId: proposal.Id,
					Voter:      voter,
					Choice:     choice,
					Weight:     weight,
				},
			),
		)
	}
	// Finalization happens only as a side effect of a vote processed
	// after the window has closed
	if now > proposal.VoteEnd {
		if proposal.YesVotes > proposal.NoVotes {
			proposal.Status = ledger.ProposalPassed
		} else {
			// Ties reject
			proposal.Status = ledger.ProposalRejected
		}
		g.logger.Info(
			"proposal finalized",
			"component", "governance",
			"proposal_id", proposal.Id,
			"status", proposal.Status.String(),
			"yes_votes", proposal.YesVotes,
			"no_votes", proposal.NoVotes,
		)
		if g.eventBus != nil {
			g.eventBus.Publish(
				ProposalFinalizedEventType,
				event.NewEvent(
					ProposalFinalizedEventType,
					ProposalFinalizedEvent{
						ProposalId: proposal.Id,
						Status:     proposal.Status,
						YesVotes:   proposal.YesVotes,
						NoVotes:    proposal.NoVotes,
					},
				),
			)
		}
	}
	return nil
}
