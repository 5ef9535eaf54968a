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

package processor_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/instruction"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/blinklabs-io/quill/processor"
	"github.com/stretchr/testify/require"
)

var (
	testProgramID = testIdentity(0xaa)
	testRecordKey = testIdentity(0xbb)
	testAdmin     = testIdentity(1)
	testTreasury  = testIdentity(2)
	alice         = testIdentity(3)
	bob           = testIdentity(4)
)

func testIdentity(b byte) ledger.Identity {
	var ret ledger.Identity
	for i := range ret {
		ret[i] = b
	}
	return ret
}

// stepClock is a settable timestamp oracle
type stepClock struct {
	now int64
}

func (c *stepClock) Now() int64 {
	return c.now
}

var errFakeTokens = errors.New("token sub-ledger refused")

// fakeTokens is an in-memory token sub-ledger double
type fakeTokens struct {
	balances map[ledger.Identity]uint64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{
		balances: make(map[ledger.Identity]uint64),
	}
}

func (f *fakeTokens) Mint(
	_ context.Context,
	destination ledger.Identity,
	amount uint64,
) error {
	f.balances[destination] += amount
	return nil
}

func (f *fakeTokens) Transfer(
	_ context.Context,
	source ledger.Identity,
	destination ledger.Identity,
	amount uint64,
) error {
	if f.balances[source] < amount {
		return errFakeTokens
	}
	f.balances[source] -= amount
	f.balances[destination] += amount
	return nil
}

func (f *fakeTokens) Burn(
	_ context.Context,
	account ledger.Identity,
	amount uint64,
) error {
	if f.balances[account] < amount {
		return errFakeTokens
	}
	f.balances[account] -= amount
	return nil
}

func (f *fakeTokens) BalanceOf(
	_ context.Context,
	owner ledger.Identity,
) (uint64, error) {
	return f.balances[owner], nil
}

type testEnv struct {
	processor *processor.Processor
	clock     *stepClock
	tokens    *fakeTokens
	record    []byte
}

func newTestEnv(t *testing.T, withTokens bool) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:  &stepClock{now: 1000},
		tokens: newFakeTokens(),
	}
	env.processor = processor.NewProcessor(processor.ProcessorConfig{
		Tokens:    env.tokens,
		Clock:     env.clock,
		ProgramID: testProgramID,
	})
	agg := ledger.NewAggregate(testAdmin, testTreasury, withTokens)
	data, err := agg.Encode()
	require.NoError(t, err)
	env.record = data
	return env
}

// process runs one instruction against the current record, applying the
// re-encoded record only on success
func (e *testEnv) process(
	t *testing.T,
	ins instruction.Instruction,
	accounts ...host.AccountRef,
) error {
	t.Helper()
	return e.processRaw(t, instruction.Encode(ins), accounts...)
}

func (e *testEnv) processRaw(
	t *testing.T,
	data []byte,
	accounts ...host.AccountRef,
) error {
	t.Helper()
	inv := &host.Invocation{
		ProgramID: testProgramID,
		Data:      data,
		Accounts: append(
			[]host.AccountRef{
				{
					Key:      testRecordKey,
					Owner:    testProgramID,
					Writable: true,
					Data:     e.record,
				},
			},
			accounts...,
		),
	}
	newData, err := e.processor.Process(t.Context(), inv)
	if err != nil {
		return err
	}
	e.record = newData
	return nil
}

func (e *testEnv) aggregate(t *testing.T) *ledger.Aggregate {
	t.Helper()
	agg, err := ledger.Decode(e.record)
	require.NoError(t, err)
	return agg
}

func signer(key ledger.Identity) host.AccountRef {
	return host.AccountRef{Key: key, Signer: true}
}

func account(key ledger.Identity) host.AccountRef {
	return host.AccountRef{Key: key}
}

func TestProcessOwnershipGuard(t *testing.T) {
	env := newTestEnv(t, false)
	inv := &host.Invocation{
		ProgramID: testProgramID,
		Data:      instruction.Encode(instruction.Join{}),
		Accounts: []host.AccountRef{
			{
				Key:   testRecordKey,
				Owner: testIdentity(0xcc), // wrong owner
				Data:  env.record,
			},
			account(alice),
		},
	}
	_, err := env.processor.Process(t.Context(), inv)
	require.ErrorIs(t, err, processor.ErrOwnership)
}

func TestProcessProgramMismatch(t *testing.T) {
	env := newTestEnv(t, false)
	inv := &host.Invocation{
		ProgramID: testIdentity(0xdd), // not the configured program
		Data:      instruction.Encode(instruction.Join{}),
		Accounts: []host.AccountRef{
			{
				Key:      testRecordKey,
				Owner:    testProgramID,
				Writable: true,
				Data:     env.record,
			},
			account(alice),
		},
	}
	_, err := env.processor.Process(t.Context(), inv)
	require.ErrorIs(t, err, processor.ErrOwnership)
}

func TestProcessMissingRecordAccount(t *testing.T) {
	env := newTestEnv(t, false)
	inv := &host.Invocation{
		ProgramID: testProgramID,
		Data:      instruction.Encode(instruction.Join{}),
	}
	_, err := env.processor.Process(t.Context(), inv)
	require.ErrorIs(t, err, processor.ErrValidation)
}

func TestProcessUnknownOpcode(t *testing.T) {
	env := newTestEnv(t, false)
	err := env.processRaw(t, []byte{200})
	require.ErrorIs(t, err, instruction.ErrUnknownOperation)
}

func TestProcessMalformedPayload(t *testing.T) {
	env := newTestEnv(t, false)
	err := env.processRaw(t, []byte{byte(instruction.OpVerifyClaim), 1, 2})
	require.ErrorIs(t, err, processor.ErrValidation)
}

func TestJoin(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.process(t, instruction.Join{}, account(alice)))
	agg := env.aggregate(t)
	require.Len(t, agg.Members, 1)
	require.Equal(t, alice, agg.Members[0].Address)
	require.Equal(t, int64(1000), agg.Members[0].JoinedAt)

	// Duplicate enrollment is allowed and appends a second entry
	env.clock.now = 2000
	require.NoError(t, env.process(t, instruction.Join{}, account(alice)))
	agg = env.aggregate(t)
	require.Len(t, agg.Members, 2)
	require.Equal(t, int64(2000), agg.Members[1].JoinedAt)
}

func TestSubmitClaimDenseIds(t *testing.T) {
	env := newTestEnv(t, false)
	for i := range 3 {
		require.NoError(
			t,
			env.process(t, instruction.SubmitClaim{}, account(alice)),
		)
		agg := env.aggregate(t)
		require.Len(t, agg.Claims, i+1)
		require.Equal(t, uint64(i), agg.Claims[i].Id)
		require.Equal(t, processor.DefaultClaimAmount, agg.Claims[i].Amount)
		require.False(t, agg.Claims[i].Verified)
	}
}

func TestVerifyClaim(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.process(t, instruction.SubmitClaim{}, account(alice)))

	// Any oracle account is accepted; the first data byte carries the verdict
	oracle := host.AccountRef{Key: testIdentity(9), Data: []byte{1}}
	require.NoError(
		t,
		env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle),
	)
	require.True(t, env.aggregate(t).Claims[0].Verified)

	// Re-verification with a negative verdict flips the flag back
	oracle.Data = []byte{0}
	require.NoError(
		t,
		env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle),
	)
	require.False(t, env.aggregate(t).Claims[0].Verified)

	// An oracle with no data is a negative verdict
	oracle.Data = nil
	require.NoError(
		t,
		env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle),
	)
	require.False(t, env.aggregate(t).Claims[0].Verified)
}

func TestVerifyClaimNotFound(t *testing.T) {
	env := newTestEnv(t, false)
	oracle := host.AccountRef{Key: testIdentity(9), Data: []byte{1}}
	err := env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle)
	require.ErrorIs(t, err, processor.ErrNotFound)
}

func TestVerifyClaimRegulatoryLimit(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.process(t, instruction.SubmitClaim{}, account(alice)))
	// Set a limit below the fixed claim amount
	require.NoError(t, env.process(
		t,
		instruction.UpdateRegulatoryParameter{
			NewLimit: processor.DefaultClaimAmount - 1,
		},
		signer(testAdmin),
	))
	oracle := host.AccountRef{Key: testIdentity(9), Data: []byte{1}}
	err := env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle)
	require.ErrorIs(t, err, processor.ErrValidation)
	require.False(t, env.aggregate(t).Claims[0].Verified)

	// A negative verdict is not gated by the limit
	oracle.Data = []byte{0}
	require.NoError(
		t,
		env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle),
	)

	// Raising the limit unblocks verification
	require.NoError(t, env.process(
		t,
		instruction.UpdateRegulatoryParameter{
			NewLimit: processor.DefaultClaimAmount,
		},
		signer(testAdmin),
	))
	oracle.Data = []byte{1}
	require.NoError(
		t,
		env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle),
	)
	require.True(t, env.aggregate(t).Claims[0].Verified)
}

func TestUpdateRegulatoryParameterAuthorization(t *testing.T) {
	env := newTestEnv(t, false)
	// Admin identity without a signature
	err := env.process(
		t,
		instruction.UpdateRegulatoryParameter{NewLimit: 1},
		account(testAdmin),
	)
	require.ErrorIs(t, err, processor.ErrMissingSignature)
	// Signer that is not the admin
	err = env.process(
		t,
		instruction.UpdateRegulatoryParameter{NewLimit: 1},
		signer(alice),
	)
	require.ErrorIs(t, err, processor.ErrAuthorization)
	require.Equal(t, uint64(0), env.aggregate(t).ClaimLimit)

	require.NoError(t, env.process(
		t,
		instruction.UpdateRegulatoryParameter{NewLimit: 42},
		signer(testAdmin),
	))
	require.Equal(t, uint64(42), env.aggregate(t).ClaimLimit)
}

func TestMint(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.process(
		t,
		instruction.Mint{Amount: 100},
		signer(testTreasury),
		account(alice),
	))
	agg := env.aggregate(t)
	require.Equal(t, uint64(100), agg.TokenManagement.TotalSupply)
	require.Equal(t, uint64(100), env.tokens.balances[alice])
}

func TestMintRequiresSigner(t *testing.T) {
	env := newTestEnv(t, true)
	err := env.process(
		t,
		instruction.Mint{Amount: 100},
		account(testTreasury),
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrMissingSignature)
	require.Equal(t, uint64(0), env.tokens.balances[alice])
}

func TestMintWithoutTokenManagement(t *testing.T) {
	env := newTestEnv(t, false)
	err := env.process(
		t,
		instruction.Mint{Amount: 100},
		signer(testTreasury),
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrInvalidState)
}

func TestMintSupplyOverflow(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.process(
		t,
		instruction.Mint{Amount: math.MaxUint64},
		signer(testTreasury),
		account(alice),
	))
	err := env.process(
		t,
		instruction.Mint{Amount: 1},
		signer(testTreasury),
		account(bob),
	)
	require.ErrorIs(t, err, processor.ErrArithmetic)
	// The overflow check runs before delegation, so the sub-ledger is
	// untouched by the failed mint
	require.Equal(t, uint64(0), env.tokens.balances[bob])
	require.Equal(
		t,
		uint64(math.MaxUint64),
		env.aggregate(t).TokenManagement.TotalSupply,
	)
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.process(
		t,
		instruction.Mint{Amount: 100},
		signer(testTreasury),
		account(alice),
	))
	require.NoError(t, env.process(
		t,
		instruction.Transfer{Amount: 30},
		account(alice),
		account(bob),
		signer(alice),
	))
	require.Equal(t, uint64(70), env.tokens.balances[alice])
	require.Equal(t, uint64(30), env.tokens.balances[bob])
	// Transfers don't change total supply
	require.Equal(
		t,
		uint64(100),
		env.aggregate(t).TokenManagement.TotalSupply,
	)
}

func TestTransferInsufficient(t *testing.T) {
	env := newTestEnv(t, true)
	err := env.process(
		t,
		instruction.Transfer{Amount: 1},
		account(alice),
		account(bob),
		signer(alice),
	)
	require.ErrorIs(t, err, errFakeTokens)
}

func TestBurn(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.process(
		t,
		instruction.Mint{Amount: 100},
		signer(testTreasury),
		account(alice),
	))
	require.NoError(t, env.process(
		t,
		instruction.Burn{Amount: 40},
		account(alice),
		account(testTreasury), // mint account, positional only
		signer(alice),
	))
	require.Equal(t, uint64(60), env.tokens.balances[alice])
	require.Equal(
		t,
		uint64(60),
		env.aggregate(t).TokenManagement.TotalSupply,
	)
}

func TestBurnSupplyUnderflow(t *testing.T) {
	env := newTestEnv(t, true)
	err := env.process(
		t,
		instruction.Burn{Amount: 1},
		account(alice),
		account(testTreasury),
		signer(alice),
	)
	require.ErrorIs(t, err, processor.ErrArithmetic)
}

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.process(
		t,
		instruction.CreateProposal{
			Description:     "fund the widget initiative",
			DurationSeconds: 3600,
		},
		account(alice),
	))
	agg := env.aggregate(t)
	require.Len(t, agg.Proposals, 1)
	p := agg.Proposals[0]
	require.Equal(t, uint64(0), p.Id)
	require.Equal(t, alice, p.Proposer)
	require.Equal(t, int64(1000), p.VoteStart)
	require.Equal(t, int64(4600), p.VoteEnd)
	require.Equal(t, ledger.ProposalActive, p.Status)
}

func TestCreateProposalInvalidDuration(t *testing.T) {
	env := newTestEnv(t, true)
	for _, duration := range []int64{0, -1} {
		err := env.process(
			t,
			instruction.CreateProposal{DurationSeconds: duration},
			account(alice),
		)
		require.ErrorIs(t, err, processor.ErrValidation)
	}
}

func TestVoteWeightAndWindow(t *testing.T) {
	env := newTestEnv(t, true)
	env.tokens.balances[alice] = 100
	env.tokens.balances[bob] = 60
	require.NoError(t, env.process(
		t,
		instruction.CreateProposal{DurationSeconds: 2000},
		account(alice),
	))

	// Votes before the window opens fail; the window is [1000, 3000]
	env.clock.now = 900
	err := env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrValidation)

	env.clock.now = 1500
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	))
	agg := env.aggregate(t)
	require.Equal(t, uint64(100), agg.Proposals[0].YesVotes)
	require.Equal(t, ledger.ProposalActive, agg.Proposals[0].Status)

	// The first vote after the window closes is tallied, then finalizes
	env.clock.now = 3900
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteNo},
		account(bob),
	))
	agg = env.aggregate(t)
	require.Equal(t, uint64(100), agg.Proposals[0].YesVotes)
	require.Equal(t, uint64(60), agg.Proposals[0].NoVotes)
	require.Equal(t, ledger.ProposalPassed, agg.Proposals[0].Status)

	// Votes on a finalized proposal fail
	err = env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrValidation)
}

func TestVoteTieRejects(t *testing.T) {
	env := newTestEnv(t, true)
	env.tokens.balances[alice] = 50
	env.tokens.balances[bob] = 50
	require.NoError(t, env.process(
		t,
		instruction.CreateProposal{DurationSeconds: 2000},
		account(alice),
	))
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	))
	env.clock.now = 3100
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteNo},
		account(bob),
	))
	agg := env.aggregate(t)
	require.Equal(t, uint64(50), agg.Proposals[0].YesVotes)
	require.Equal(t, uint64(50), agg.Proposals[0].NoVotes)
	require.Equal(t, ledger.ProposalRejected, agg.Proposals[0].Status)
}

func TestVoteMissingProposal(t *testing.T) {
	env := newTestEnv(t, true)
	err := env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrNotFound)
}

func TestVoteTallyOverflow(t *testing.T) {
	env := newTestEnv(t, true)
	env.tokens.balances[alice] = math.MaxUint64
	require.NoError(t, env.process(
		t,
		instruction.CreateProposal{DurationSeconds: 2000},
		account(alice),
	))
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	))
	// No double-vote guard: voting again overflows the yes tally
	err := env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrArithmetic)
	require.Equal(
		t,
		uint64(math.MaxUint64),
		env.aggregate(t).Proposals[0].YesVotes,
	)
}

func TestSubmitDispute(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.process(
		t,
		instruction.SubmitDispute{Description: "premium was misapplied"},
		account(alice),
		account(bob),
	))
	require.NoError(t, env.process(
		t,
		instruction.SubmitDispute{Description: ""},
		account(bob),
		account(alice),
	))
	agg := env.aggregate(t)
	require.Len(t, agg.Disputes, 2)
	require.Equal(t, uint64(0), agg.Disputes[0].Id)
	require.Equal(t, alice, agg.Disputes[0].Initiator)
	require.Equal(t, bob, agg.Disputes[0].Respondent)
	require.Equal(t, "premium was misapplied", agg.Disputes[0].Description)
	require.Equal(t, ledger.DisputeOpen, agg.Disputes[0].Status)
	require.Nil(t, agg.Disputes[0].ClaimId)
	require.Empty(t, agg.Disputes[0].Votes)
	require.Equal(t, uint64(1), agg.Disputes[1].Id)
}

func TestVoteDispute(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.process(
		t,
		instruction.SubmitDispute{Description: "premium was misapplied"},
		account(alice),
		account(bob),
	))
	require.NoError(t, env.process(
		t,
		instruction.VoteDispute{DisputeIndex: 0, Support: true},
		account(alice),
	))
	agg := env.aggregate(t)
	require.Equal(
		t,
		[]ledger.DisputeVote{{Voter: alice, Support: true}},
		agg.Disputes[0].Votes,
	)
	// One vote per member per dispute
	err := env.process(
		t,
		instruction.VoteDispute{DisputeIndex: 0, Support: false},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrValidation)
	require.Len(t, env.aggregate(t).Disputes[0].Votes, 1)
}

func TestVoteDisputeMissing(t *testing.T) {
	env := newTestEnv(t, false)
	err := env.process(
		t,
		instruction.VoteDispute{DisputeIndex: 0, Support: true},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrNotFound)
}

func TestVoteDisputeThresholdClose(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.process(
		t,
		instruction.SubmitDispute{Description: "premium was misapplied"},
		account(alice),
		account(bob),
	))
	// The dispute stays open through the threshold vote count
	for i := range processor.DisputeVoteThreshold {
		require.NoError(t, env.process(
			t,
			instruction.VoteDispute{DisputeIndex: 0, Support: i%2 == 0},
			account(testIdentity(byte(0x10+i))),
		))
	}
	require.Equal(t, ledger.DisputeOpen, env.aggregate(t).Disputes[0].Status)
	// One more vote pushes it past the threshold and closes it
	require.NoError(t, env.process(
		t,
		instruction.VoteDispute{DisputeIndex: 0, Support: true},
		account(testIdentity(0x20)),
	))
	agg := env.aggregate(t)
	require.Equal(t, ledger.DisputeClosed, agg.Disputes[0].Status)
	require.Len(t, agg.Disputes[0].Votes, processor.DisputeVoteThreshold+1)
	// Votes on a closed dispute fail validation
	err := env.process(
		t,
		instruction.VoteDispute{DisputeIndex: 0, Support: false},
		account(testIdentity(0x21)),
	)
	require.ErrorIs(t, err, processor.ErrValidation)
}

func TestSubmitDocuments(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	agg := env.aggregate(t)
	require.Len(t, agg.MemberCompliance, 1)
	require.Equal(t, ledger.CompliancePending, agg.MemberCompliance[0].KycStatus)
	require.Equal(t, ledger.CompliancePending, agg.MemberCompliance[0].AmlStatus)

	// Approve, then re-submit: re-submission resets both statuses
	require.NoError(t, env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 1},
		account(alice),
		signer(testIdentity(9)),
	))
	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	agg = env.aggregate(t)
	require.Len(t, agg.MemberCompliance, 1)
	require.Equal(t, ledger.CompliancePending, agg.MemberCompliance[0].KycStatus)
	require.Equal(t, ledger.CompliancePending, agg.MemberCompliance[0].AmlStatus)
}

func TestUpdateComplianceStatus(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	require.NoError(t, env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 0},
		account(alice),
		signer(testIdentity(9)),
	))
	agg := env.aggregate(t)
	require.Equal(t, ledger.ComplianceApproved, agg.MemberCompliance[0].KycStatus)
	require.Equal(t, ledger.ComplianceRejected, agg.MemberCompliance[0].AmlStatus)
}

func TestUpdateComplianceStatusRequiresSigner(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	err := env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 1},
		account(alice),
		account(testIdentity(9)),
	)
	require.ErrorIs(t, err, processor.ErrMissingSignature)
}

func TestUpdateComplianceStatusMissingRecord(t *testing.T) {
	env := newTestEnv(t, false)
	err := env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 1},
		account(alice),
		signer(testIdentity(9)),
	)
	require.ErrorIs(t, err, processor.ErrNotFound)
}

func TestUpdateComplianceStatusInvalidResult(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	err := env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 2, AmlResult: 1},
		account(alice),
		signer(testIdentity(9)),
	)
	require.ErrorIs(t, err, processor.ErrValidation)
}

func TestCheckComplianceGate(t *testing.T) {
	env := newTestEnv(t, false)
	// No record at all
	err := env.process(
		t,
		instruction.CheckComplianceGate{},
		account(alice),
	)
	require.ErrorIs(t, err, processor.ErrNotFound)

	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	// Pending fails the gate
	err = env.process(t, instruction.CheckComplianceGate{}, account(alice))
	require.ErrorIs(t, err, processor.ErrCompliance)

	// KYC approved but AML rejected still fails
	require.NoError(t, env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 0},
		account(alice),
		signer(testIdentity(9)),
	))
	err = env.process(t, instruction.CheckComplianceGate{}, account(alice))
	require.ErrorIs(t, err, processor.ErrCompliance)

	// Both approved passes
	require.NoError(t, env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 1},
		account(alice),
		signer(testIdentity(9)),
	))
	require.NoError(
		t,
		env.process(t, instruction.CheckComplianceGate{}, account(alice)),
	)
}

// A full pass through the organization's lifecycle: enrollment, claims,
// treasury, governance, and compliance against one record
func TestLifecycle(t *testing.T) {
	env := newTestEnv(t, true)

	require.NoError(t, env.process(t, instruction.Join{}, account(alice)))
	require.NoError(t, env.process(t, instruction.Join{}, account(bob)))

	require.NoError(
		t,
		env.process(t, instruction.SubmitClaim{}, account(alice)),
	)
	oracle := host.AccountRef{Key: testIdentity(9), Data: []byte{1}}
	require.NoError(
		t,
		env.process(t, instruction.VerifyClaim{ClaimIndex: 0}, oracle),
	)

	require.NoError(t, env.process(
		t,
		instruction.Mint{Amount: 100},
		signer(testTreasury),
		account(alice),
	))
	require.NoError(t, env.process(
		t,
		instruction.Transfer{Amount: 40},
		account(alice),
		account(bob),
		signer(alice),
	))

	require.NoError(t, env.process(
		t,
		instruction.CreateProposal{
			Description:     "open a community workshop",
			DurationSeconds: 2000,
		},
		account(alice),
	))
	env.clock.now = 1500
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteYes},
		account(alice),
	))
	env.clock.now = 3900
	require.NoError(t, env.process(
		t,
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteNo},
		account(bob),
	))

	require.NoError(
		t,
		env.process(t, instruction.SubmitDocuments{}, account(alice)),
	)
	require.NoError(t, env.process(
		t,
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 1},
		account(alice),
		signer(testIdentity(9)),
	))
	require.NoError(
		t,
		env.process(t, instruction.CheckComplianceGate{}, account(alice)),
	)

	agg := env.aggregate(t)
	require.Len(t, agg.Members, 2)
	require.Len(t, agg.Claims, 1)
	require.True(t, agg.Claims[0].Verified)
	require.Equal(t, uint64(100), agg.TokenManagement.TotalSupply)
	require.Len(t, agg.Proposals, 1)
	// Alice's 60 remaining tokens beat Bob's 40
	require.Equal(t, uint64(60), agg.Proposals[0].YesVotes)
	require.Equal(t, uint64(40), agg.Proposals[0].NoVotes)
	require.Equal(t, ledger.ProposalPassed, agg.Proposals[0].Status)
}
