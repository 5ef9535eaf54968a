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
	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
)

// DefaultClaimAmount is recorded for every submitted claim. Claim
// amounts from the instruction payload are not yet supported.
const DefaultClaimAmount uint64 = 1_000_000

// ClaimsManager handles claim submission and oracle-driven verification
type ClaimsManager struct {
	logger   *slog.Logger
	eventBus *event.EventBus
}

// SubmitClaim appends an unverified claim for the member. Claim ids are
// dense and zero-based: the id equals the claim's position in the
// sequence at creation time and never changes.
func (c *ClaimsManager) SubmitClaim(
	agg *ledger.Aggregate,
	member ledger.Identity,
) ledger.Claim {
	claim := ledger.Claim{
		Id:     uint64(len(agg.Claims)),
		Member: member,
		Amount: DefaultClaimAmount,
	}
	agg.Claims = append(agg.Claims, claim)
	c.logger.Info(
		"claim submitted",
		"component", "claims",
		"claim_id", claim.Id,
		"member", member.String(),
		"amount", claim.Amount,
	)
	if c.eventBus != nil {
		c.eventBus.Publish(
			ClaimSubmittedEventType,
			event.NewEvent(
				ClaimSubmittedEventType,
				ClaimSubmittedEvent{
					ClaimId: claim.Id,
					Member:  member,
					Amount:  claim.Amount,
				},
			),
		)
	}
	return claim
}

// VerifyClaim reads the verification flag the oracle account exposes
// (byte value 1 = verified) and writes it to the claim. The oracle's
// identity is not checked against any registered trusted-oracle list.
// Re-running verification on the same claim is allowed and idempotent.
func (c *ClaimsManager) VerifyClaim(
	agg *ledger.Aggregate,
	claimIndex uint64,
	oracle *host.AccountRef,
) error {
	if claimIndex >= uint64(len(agg.Claims)) {
		return fmt.Errorf("%w: claim %d", ErrNotFound, claimIndex)
	}
	claim := &agg.Claims[claimIndex]
	verified := len(oracle.Data) > 0 && oracle.Data[0] == 1
	if verified && agg.ClaimLimit > 0 && claim.Amount > agg.ClaimLimit {
		return fmt.Errorf(
			"%w: claim amount %d exceeds regulatory limit %d",
			ErrValidation,
			claim.Amount,
			agg.ClaimLimit,
		)
	}
	claim.Verified = verified
	c.logger.Info(
		"claim verification recorded",
		"component", "claims",
		"claim_id", claim.Id,
		"oracle", oracle.Key.String(),
		"verified", verified,
	)
	if c.eventBus != nil {
		c.eventBus.Publish(
			ClaimVerifiedEventType,
			event.NewEvent(
				ClaimVerifiedEventType,
				ClaimVerifiedEvent{
					ClaimId:  claim.Id,
					Verified: verified,
				},
			),
		)
	}
	return nil
}
