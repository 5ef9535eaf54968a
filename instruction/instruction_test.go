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

package instruction_test

import (
	"testing"

	"github.com/blinklabs-io/quill/instruction"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTrip(t *testing.T) {
	testDefs := []instruction.Instruction{
		instruction.Join{},
		instruction.SubmitClaim{},
		instruction.VerifyClaim{ClaimIndex: 3},
		instruction.Mint{Amount: 1_000_000},
		instruction.Transfer{Amount: 250},
		instruction.Burn{Amount: 99},
		instruction.CreateProposal{
			Description:     "fund the widget initiative",
			DurationSeconds: 3600,
		},
		instruction.CreateProposal{
			Description:     "",
			DurationSeconds: 1,
		},
		instruction.Vote{ProposalIndex: 2, Choice: instruction.VoteYes},
		instruction.Vote{ProposalIndex: 0, Choice: instruction.VoteNo},
		instruction.SubmitDocuments{},
		instruction.UpdateComplianceStatus{KycResult: 1, AmlResult: 0},
		instruction.CheckComplianceGate{},
		instruction.UpdateRegulatoryParameter{NewLimit: 5_000_000},
		instruction.SubmitDispute{
			Description: "claim verification was wrongly denied",
		},
		instruction.SubmitDispute{Description: ""},
		instruction.VoteDispute{DisputeIndex: 1, Support: true},
		instruction.VoteDispute{DisputeIndex: 0, Support: false},
	}
	for _, testDef := range testDefs {
		data := instruction.Encode(testDef)
		decoded, err := instruction.Decode(data)
		require.NoError(t, err, "opcode %s", testDef.Opcode())
		require.Equal(t, testDef, decoded)
	}
}

func TestDecodeEmpty(t *testing.T) {
	_, err := instruction.Decode(nil)
	require.ErrorIs(t, err, instruction.ErrInvalidPayload)
	_, err = instruction.Decode([]byte{})
	require.ErrorIs(t, err, instruction.ErrInvalidPayload)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := instruction.Decode([]byte{14})
	require.ErrorIs(t, err, instruction.ErrUnknownOperation)
	_, err = instruction.Decode([]byte{255, 1, 2, 3})
	require.ErrorIs(t, err, instruction.ErrUnknownOperation)
}

func TestDecodeMalformedPayloads(t *testing.T) {
	testDefs := [][]byte{
		// Join with trailing bytes
		{0, 1},
		// SubmitClaim with trailing bytes
		{1, 0xff},
		// VerifyClaim with short index
		{2, 1, 2, 3},
		// Mint with long payload
		{3, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		// Transfer with no amount
		{4},
		// Burn with short amount
		{5, 1},
		// CreateProposal with short duration
		{6, 1, 2, 3},
		// Vote with missing choice byte
		{7, 1, 2, 3, 4, 5, 6, 7, 8},
		// Vote with out-of-range choice
		{7, 0, 0, 0, 0, 0, 0, 0, 0, 2},
		// SubmitDocuments with trailing bytes
		{8, 0},
		// UpdateComplianceStatus with one result byte
		{9, 1},
		// CheckComplianceGate with trailing bytes
		{10, 0},
		// UpdateRegulatoryParameter with short limit
		{11, 1, 2},
		// SubmitDispute with an invalid UTF-8 description
		{12, 0xff, 0xfe},
		// VoteDispute with missing support byte
		{13, 1, 2, 3, 4, 5, 6, 7, 8},
	}
	for _, testDef := range testDefs {
		_, err := instruction.Decode(testDef)
		require.ErrorIsf(
			t, err, instruction.ErrInvalidPayload,
			"payload %v", testDef,
		)
	}
}

func TestDecodeProposalDescriptionUtf8(t *testing.T) {
	// Valid header followed by an invalid UTF-8 description
	data := []byte{6, 0x10, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xfe}
	_, err := instruction.Decode(data)
	require.ErrorIs(t, err, instruction.ErrInvalidPayload)
}

func TestDecodeDisputeVoteSupportByte(t *testing.T) {
	// Any nonzero support byte counts as siding with the initiator
	decoded, err := instruction.Decode(
		[]byte{13, 2, 0, 0, 0, 0, 0, 0, 0, 7},
	)
	require.NoError(t, err)
	require.Equal(
		t,
		instruction.VoteDispute{DisputeIndex: 2, Support: true},
		decoded,
	)
}

func TestOpcodeStrings(t *testing.T) {
	require.Equal(t, "join", instruction.OpJoin.String())
	require.Equal(t, "mint", instruction.OpMint.String())
	require.Equal(
		t,
		"update_regulatory_parameter",
		instruction.OpUpdateRegulatoryParameter.String(),
	)
	require.Equal(t, "vote_dispute", instruction.OpVoteDispute.String())
	require.Equal(t, "unknown (200)", instruction.Opcode(200).String())
}
