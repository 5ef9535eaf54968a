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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/quill/event"
	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/instruction"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProcessorConfig holds the collaborators the instruction processor
// needs from the host environment
type ProcessorConfig struct {
	PromRegistry prometheus.Registerer
	Tokens       TokenLedger
	Clock        host.Clock
	Logger       *slog.Logger
	EventBus     *event.EventBus
	ProgramID    ledger.Identity
}

// Processor is the single entry point of the ledger engine: it decodes
// one instruction, authorizes it, routes it to the owning manager, and
// re-serializes the aggregate on success. Failure is all-or-nothing at
// instruction granularity.
type Processor struct {
	programID ledger.Identity
	logger    *slog.Logger
	metrics   struct {
		instructionsProcessed *prometheus.CounterVec
		instructionFailures   *prometheus.CounterVec
	}
	membership MembershipManager
	claims     ClaimsManager
	governance GovernanceManager
	compliance ComplianceManager
	treasury   TreasuryManager
	disputes   DisputeManager
	clock      host.Clock
}

// NewProcessor creates an instruction processor
func NewProcessor(config ProcessorConfig) *Processor {
	p := &Processor{
		programID: config.ProgramID,
		clock:     config.Clock,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		p.logger = config.Logger
	}
	if p.clock == nil {
		p.clock = host.SystemClock{}
	}
	p.membership = MembershipManager{
		logger:   p.logger,
		eventBus: config.EventBus,
	}
	p.claims = ClaimsManager{
		logger:   p.logger,
		eventBus: config.EventBus,
	}
	p.governance = GovernanceManager{
		logger:   p.logger,
		eventBus: config.EventBus,
		tokens:   config.Tokens,
	}
	p.compliance = ComplianceManager{
		logger:   p.logger,
		eventBus: config.EventBus,
	}
	p.treasury = TreasuryManager{
		logger:   p.logger,
		eventBus: config.EventBus,
		tokens:   config.Tokens,
	}
	p.disputes = DisputeManager{
		logger:   p.logger,
		eventBus: config.EventBus,
	}
	// Init metrics
	promautoFactory := promauto.With(config.PromRegistry)
	p.metrics.instructionsProcessed = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_instructions_processed_total",
			Help: "total instructions processed successfully by operation",
		},
		[]string{"operation"},
	)
	p.metrics.instructionFailures = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_instruction_failures_total",
			Help: "total instructions aborted with an error by operation",
		},
		[]string{"operation"},
	)
	return p
}

// Process runs exactly one instruction against exactly one aggregate
// record. The record account is the invocation's first account
// reference; on success the returned bytes are the re-encoded record,
// and on error the record must be left exactly as it was.
func (p *Processor) Process(
	ctx context.Context,
	inv *host.Invocation,
) ([]byte, error) {
	if inv.ProgramID != p.programID {
		return nil, fmt.Errorf(
			"%w: invocation for program %s, expected %s",
			ErrOwnership,
			inv.ProgramID,
			p.programID,
		)
	}
	accounts := inv.AccountIter()
	record, err := accounts.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: ledger record account", ErrValidation)
	}
	if err := checkOwnership(record, inv.ProgramID); err != nil {
		return nil, err
	}
	ins, err := instruction.Decode(inv.Data)
	if err != nil {
		if errors.Is(err, instruction.ErrInvalidPayload) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, err
	}
	agg, err := ledger.Decode(record.Data)
	if err != nil {
		return nil, err
	}
	// One timestamp oracle reading per instruction
	now := p.clock.Now()
	opcode := ins.Opcode()
	if err := p.dispatch(ctx, agg, ins, accounts, now); err != nil {
		p.metrics.instructionFailures.WithLabelValues(opcode.String()).Inc()
		p.logger.Debug(
			"instruction aborted",
			"component", "processor",
			"operation", opcode.String(),
			"error", err,
		)
		return nil, err
	}
	newData, err := agg.Encode()
	if err != nil {
		p.metrics.instructionFailures.WithLabelValues(opcode.String()).Inc()
		return nil, err
	}
	p.metrics.instructionsProcessed.WithLabelValues(opcode.String()).Inc()
	return newData, nil
}

// dispatch matches exhaustively over the closed instruction union and
// routes to the owning manager. Unknown opcodes never reach here: the
// decode boundary already rejected them.
func (p *Processor) dispatch(
	ctx context.Context,
	agg *ledger.Aggregate,
	ins instruction.Instruction,
	accounts *host.AccountIter,
	now int64,
) error {
	switch i := ins.(type) {
	case instruction.Join:
		member, err := nextAccount(accounts, "new member")
		if err != nil {
			return err
		}
		p.membership.Join(agg, member.Key, now)
		return nil
	case instruction.SubmitClaim:
		member, err := nextAccount(accounts, "claimant")
		if err != nil {
			return err
		}
		p.claims.SubmitClaim(agg, member.Key)
		return nil
	case instruction.VerifyClaim:
		oracle, err := nextAccount(accounts, "oracle")
		if err != nil {
			return err
		}
		return p.claims.VerifyClaim(agg, i.ClaimIndex, oracle)
	case instruction.Mint:
		authority, err := nextAccount(accounts, "mint authority")
		if err != nil {
			return err
		}
		destination, err := nextAccount(accounts, "destination")
		if err != nil {
			return err
		}
		return p.treasury.Mint(ctx, agg, authority, destination, i.Amount)
	case instruction.Transfer:
		source, err := nextAccount(accounts, "source")
		if err != nil {
			return err
		}
		destination, err := nextAccount(accounts, "destination")
		if err != nil {
			return err
		}
		authority, err := nextAccount(accounts, "transfer authority")
		if err != nil {
			return err
		}
		return p.treasury.Transfer(
			ctx,
			source,
			destination,
			authority,
			i.Amount,
		)
	case instruction.Burn:
		tokenAccount, err := nextAccount(accounts, "token account")
		if err != nil {
			return err
		}
		// The mint account is referenced positionally but carries no
		// information the engine needs
		if _, err := nextAccount(accounts, "mint"); err != nil {
			return err
		}
		authority, err := nextAccount(accounts, "burn authority")
		if err != nil {
			return err
		}
		return p.treasury.Burn(ctx, agg, tokenAccount, authority, i.Amount)
	case instruction.CreateProposal:
		proposer, err := nextAccount(accounts, "proposer")
		if err != nil {
			return err
		}
		_, err = p.governance.CreateProposal(
			agg,
			proposer.Key,
			i.Description,
			i.DurationSeconds,
			now,
		)
		return err
	case instruction.Vote:
		voter, err := nextAccount(accounts, "voter")
		if err != nil {
			return err
		}
		return p.governance.Vote(
			ctx,
			agg,
			i.ProposalIndex,
			voter.Key,
			i.Choice,
			now,
		)
	case instruction.SubmitDocuments:
		member, err := nextAccount(accounts, "member")
		if err != nil {
			return err
		}
		p.compliance.SubmitDocuments(agg, member.Key)
		return nil
	case instruction.UpdateComplianceStatus:
		member, err := nextAccount(accounts, "member")
		if err != nil {
			return err
		}
		verifier, err := nextAccount(accounts, "verifier")
		if err != nil {
			return err
		}
		return p.compliance.UpdateStatus(
			agg,
			member.Key,
			verifier,
			i.KycResult,
			i.AmlResult,
		)
	case instruction.CheckComplianceGate:
		member, err := nextAccount(accounts, "member")
		if err != nil {
			return err
		}
		return p.compliance.CheckGate(agg, member.Key)
	case instruction.UpdateRegulatoryParameter:
		admin, err := nextAccount(accounts, "admin")
		if err != nil {
			return err
		}
		return p.compliance.UpdateClaimLimit(agg, admin, i.NewLimit)
	case instruction.SubmitDispute:
		initiator, err := nextAccount(accounts, "initiator")
		if err != nil {
			return err
		}
		respondent, err := nextAccount(accounts, "respondent")
		if err != nil {
			return err
		}
		p.disputes.SubmitDispute(
			agg,
			initiator.Key,
			respondent.Key,
			i.Description,
		)
		return nil
	case instruction.VoteDispute:
		voter, err := nextAccount(accounts, "dispute voter")
		if err != nil {
			return err
		}
		return p.disputes.VoteDispute(
			agg,
			i.DisputeIndex,
			voter.Key,
			i.Support,
		)
	default:
		// Unreachable: the union is closed and Decode rejects unknown
		// opcodes
		return fmt.Errorf(
			"%w: opcode %d",
			instruction.ErrUnknownOperation,
			uint8(ins.Opcode()),
		)
	}
}

func nextAccount(
	accounts *host.AccountIter,
	role string,
) (*host.AccountRef, error) {
	ref, err := accounts.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %s account", ErrValidation, role)
	}
	return ref, nil
}
