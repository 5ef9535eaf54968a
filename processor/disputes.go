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
	"log/slog"

	"github.com/blinklabs-io/quill/event"
	"github.com/blinklabs-io/quill/ledger"
)

// DisputeVoteThreshold is the vote count a dispute must exceed before it
// closes automatically
const DisputeVoteThreshold = 5

// DisputeManager handles member-raised disputes and their voting
type DisputeManager struct {
	logger   *slog.Logger
	eventBus *event.EventBus
}

// SubmitDispute appends a new open dispute between an initiator and a
// respondent. Disputes start with no votes and no claim link.
func (d *DisputeManager) SubmitDispute(
	agg *ledger.Aggregate,
	initiator ledger.Identity,
	respondent ledger.Identity,
	description string,
) ledger.Dispute {
	dispute := ledger.Dispute{
		Id:          uint64(len(agg.Disputes)),
		Initiator:   initiator,
		Respondent:  respondent,
		Description: description,
		Status:      ledger.DisputeOpen,
	}
	agg.Disputes = append(agg.Disputes, dispute)
	d.logger.Info(
		"dispute submitted",
		"component", "disputes",
		"dispute_id", dispute.Id,
		"initiator", initiator.String(),
		"respondent", respondent.String(),
	)
	if d.eventBus != nil {
		d.eventBus.Publish(
			DisputeSubmittedEventType,
			event.NewEvent(
				DisputeSubmittedEventType,
				DisputeSubmittedEvent{
					DisputeId:  dispute.Id,
					Initiator:  initiator,
					Respondent: respondent,
				},
			),
		)
	}
	return dispute
}

// VoteDispute records one member's ballot on an open dispute. Each voter
// may vote at most once per dispute. Once the vote count exceeds the
// threshold the dispute closes, resolved for the initiator on a strict
// majority of supporting votes and against otherwise.
func (d *DisputeManager) VoteDispute(
	agg *ledger.Aggregate,
	disputeIndex uint64,
	voter ledger.Identity,
	support bool,
) error {
	if disputeIndex >= uint64(len(agg.Disputes)) {
		return fmt.Errorf("%w: dispute %d", ErrNotFound, disputeIndex)
	}
	dispute := &agg.Disputes[disputeIndex]
	if dispute.Status != ledger.DisputeOpen {
		return fmt.Errorf(
			"%w: dispute %d already closed",
			ErrValidation,
			dispute.Id,
		)
	}
	if dispute.HasVoted(voter) {
		return fmt.Errorf(
			"%w: %s already voted on dispute %d",
			ErrValidation,
			voter,
			dispute.Id,
		)
	}
	dispute.Votes = append(dispute.Votes, ledger.DisputeVote{
		Voter:   voter,
		Support: support,
	})
	d.logger.Info(
		"dispute vote cast",
		"component", "disputes",
		"dispute_id", dispute.Id,
		"voter", voter.String(),
		"support", support,
	)
	if d.eventBus != nil {
		d.eventBus.Publish(
			DisputeVoteCastEventType,
			event.NewEvent(
				DisputeVoteCastEventType,
				DisputeVoteCastEvent{
					DisputeId: dispute.Id,
					Voter:     voter,
					Support:   support,
				},
			),
		)
	}
	if len(dispute.Votes) > DisputeVoteThreshold {
		dispute.Status = ledger.DisputeClosed
		supportCount := 0
		for _, v := range dispute.Votes {
			if v.Support {
				supportCount++
			}
		}
		// Strict majority resolves for the initiator
		inFavor := supportCount*2 > len(dispute.Votes)
		d.logger.Info(
			"dispute closed",
			"component", "disputes",
			"dispute_id", dispute.Id,
			"in_favor", inFavor,
			"support_votes", supportCount,
			"total_votes", len(dispute.Votes),
		)
		if d.eventBus != nil {
			d.eventBus.Publish(
				DisputeClosedEventType,
				event.NewEvent(
					DisputeClosedEventType,
					DisputeClosedEvent{
						DisputeId:    dispute.Id,
						InFavor:      inFavor,
						SupportVotes: uint64(supportCount),
						TotalVotes:   uint64(len(dispute.Votes)),
					},
				),
			)
		}
	}
	return nil
}
