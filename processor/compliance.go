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

// ComplianceManager handles the KYC/AML status lifecycle, the compliance
// gate, and regulatory parameter updates
type ComplianceManager struct {
	logger   *slog.Logger
	eventBus *event.EventBus
}

// SubmitDocuments creates the member's compliance record with both
// statuses Pending, or resets an existing record back to Pending.
// Re-submission always resets, regardless of prior adjudication.
func (c *ComplianceManager) SubmitDocuments(
	agg *ledger.Aggregate,
	member ledger.Identity,
) {
	record := agg.ComplianceRecord(member)
	if record == nil {
		agg.MemberCompliance = append(
			agg.MemberCompliance,
			ledger.MemberCompliance{
				Member:    member,
				KycStatus: ledger.CompliancePending,
				AmlStatus: ledger.CompliancePending,
			},
		)
	} else {
		record.KycStatus = ledger.CompliancePending
		record.AmlStatus = ledger.CompliancePending
	}
	c.logger.Info(
		"compliance documents submitted",
		"component", "compliance",
		"member", member.String(),
	)
	if c.eventBus != nil {
		c.eventBus.Publish(
			DocumentsSubmittedEventType,
			event.NewEvent(
				DocumentsSubmittedEventType,
				DocumentsSubmittedEvent{
					Member: member,
				},
			),
		)
	}
}

// UpdateStatus records the verifier's KYC and AML adjudication for a
// member. The verifier must have signed the invocation, but its identity
// is not checked against a registered-verifier allowlist.
func (c *ComplianceManager) UpdateStatus(
	agg *ledger.Aggregate,
	member ledger.Identity,
	verifier *host.AccountRef,
	kycResult uint8,
	amlResult uint8,
) error {
	if err := requireSigner(verifier, "verifier"); err != nil {
		return err
	}
	record := agg.ComplianceRecord(member)
	if record == nil {
		return fmt.Errorf(
			"%w: no compliance record for member %s",
			ErrNotFound,
			member,
		)
	}
	kycStatus, err := adjudicationStatus(kycResult)
	if err != nil {
		return fmt.Errorf("kyc: %w", err)
	}
	amlStatus, err := adjudicationStatus(amlResult)
	if err != nil {
		return fmt.Errorf("aml: %w", err)
	}
	record.KycStatus = kycStatus
	record.AmlStatus = amlStatus
	c.logger.Info(
		"compliance status updated",
		"component", "compliance",
		"member", member.String(),
		"verifier", verifier.Key.String(),
		"kyc_status", kycStatus.String(),
		"aml_status", amlStatus.String(),
	)
	if c.eventBus != nil {
		c.eventBus.Publish(
			ComplianceUpdatedEventType,
			event.NewEvent(
				ComplianceUpdatedEventType,
				ComplianceUpdatedEvent{
					Member:    member,
					KycStatus: kycStatus,
					AmlStatus: amlStatus,
				},
			),
		)
	}
	return nil
}

// CheckGate succeeds only when both the member's KYC and AML statuses are
// Approved. It has no side effect; callers compose it as a precondition
// before other operations.
func (c *ComplianceManager) CheckGate(
	agg *ledger.Aggregate,
	member ledger.Identity,
) error {
	record := agg.ComplianceRecord(member)
	if record == nil {
		return fmt.Errorf(
			"%w: no compliance record for member %s",
			ErrNotFound,
			member,
		)
	}
	if record.KycStatus != ledger.ComplianceApproved ||
		record.AmlStatus != ledger.ComplianceApproved {
		return fmt.Errorf(
			"%w: member %s kyc=%s aml=%s",
			ErrCompliance,
			member,
			record.KycStatus,
			record.AmlStatus,
		)
	}
	return nil
}

// UpdateClaimLimit sets the regulatory claim limit. Admin only: the
// signer's identity must equal the stored admin identity.
func (c *ComplianceManager) UpdateClaimLimit(
	agg *ledger.Aggregate,
	admin *host.AccountRef,
	newLimit uint64,
) error {
	if err := requireAdmin(admin, agg.Admin); err != nil {
		return err
	}
	agg.ClaimLimit = newLimit
	c.logger.Info(
		"regulatory claim limit updated",
		"component", "compliance",
		"new_limit", newLimit,
	)
	if c.eventBus != nil {
		c.eventBus.Publish(
			ClaimLimitUpdatedEventType,
			event.NewEvent(
				ClaimLimitUpdatedEventType,
				ClaimLimitUpdatedEvent{
					NewLimit: newLimit,
				},
			),
		)
	}
	return nil
}

func adjudicationStatus(result uint8) (ledger.ComplianceStatus, error) {
	switch result {
	case 0:
		return ledger.ComplianceRejected, nil
	case 1:
		return ledger.ComplianceApproved, nil
	default:
		return 0, fmt.Errorf(
			"%w: invalid adjudication result %d",
			ErrValidation,
			result,
		)
	}
}
