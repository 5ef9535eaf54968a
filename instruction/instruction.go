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

package instruction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Opcode is the leading byte of an instruction selecting the operation.
// This is the canonical non-overlapping enumeration; earlier revisions of
// the program disagreed on the numbering of treasury and governance
// operations.
type Opcode uint8

const (
	OpJoin                      Opcode = 0
	OpSubmitClaim               Opcode = 1
	OpVerifyClaim               Opcode = 2
	OpMint                      Opcode = 3
	OpTransfer                  Opcode = 4
	OpBurn                      Opcode = 5
	OpCreateProposal            Opcode = 6
	OpVote                      Opcode = 7
	OpSubmitDocuments           Opcode = 8
	OpUpdateComplianceStatus    Opcode = 9
	OpCheckComplianceGate       Opcode = 10
	OpUpdateRegulatoryParameter Opcode = 11
	OpSubmitDispute             Opcode = 12
	OpVoteDispute               Opcode = 13
)

func (o Opcode) String() string {
	switch o {
	case OpJoin:
		return "join"
	case OpSubmitClaim:
		return "submit_claim"
	case OpVerifyClaim:
		return "verify_claim"
	case OpMint:
		return "mint"
	case OpTransfer:
		return "transfer"
	case OpBurn:
		return "burn"
	case OpCreateProposal:
		return "create_proposal"
	case OpVote:
		return "vote"
	case OpSubmitDocuments:
		return "submit_documents"
	case OpUpdateComplianceStatus:
		return "update_compliance_status"
	case OpCheckComplianceGate:
		return "check_compliance_gate"
	case OpUpdateRegulatoryParameter:
		return "update_regulatory_parameter"
	case OpSubmitDispute:
		return "submit_dispute"
	case OpVoteDispute:
		return "vote_dispute"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(o))
	}
}

var (
	// ErrUnknownOperation indicates an unrecognized opcode byte
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidPayload indicates a malformed instruction payload
	ErrInvalidPayload = errors.New("invalid instruction payload")
)

// VoteChoice is a Yes/No ballot selection
type VoteChoice uint8

const (
	VoteNo  VoteChoice = 0
	VoteYes VoteChoice = 1
)

func (v VoteChoice) String() string {
	if v == VoteYes {
		return "yes"
	}
	return "no"
}

// Instruction is the closed union over all operations the engine knows
// how to perform. The dispatcher matches exhaustively over the concrete
// types below; an unmatched opcode byte never produces an Instruction.
type Instruction interface {
	Opcode() Opcode
	isInstruction()
}

type Join struct{}

type SubmitClaim struct{}

type VerifyClaim struct {
	ClaimIndex uint64
}

type Mint struct {
	Amount uint64
}

type Transfer struct {
	Amount uint64
}

type Burn struct {
	Amount uint64
}

type CreateProposal struct {
	Description     string
	DurationSeconds int64
}

type Vote struct {
	ProposalIndex uint64
	Choice        VoteChoice
}

type SubmitDocuments struct{}

type UpdateComplianceStatus struct {
	KycResult uint8
	AmlResult uint8
}

type CheckComplianceGate struct{}

type UpdateRegulatoryParameter struct {
	NewLimit uint64
}

type SubmitDispute struct {
	Description string
}

type VoteDispute struct {
	DisputeIndex uint64
	Support      bool
}

func (Join) Opcode() Opcode            { return OpJoin }
func (SubmitClaim) Opcode() Opcode     { return OpSubmitClaim }
func (VerifyClaim) Opcode() Opcode     { return OpVerifyClaim }
func (Mint) Opcode() Opcode            { return OpMint }
func (Transfer) Opcode() Opcode        { return OpTransfer }
func (Burn) Opcode() Opcode            { return OpBurn }
func (CreateProposal) Opcode() Opcode  { return OpCreateProposal }
func (Vote) Opcode() Opcode            { return OpVote }
func (SubmitDocuments) Opcode() Opcode { return OpSubmitDocuments }
func (UpdateComplianceStatus) Opcode() Opcode {
	return OpUpdateComplianceStatus
}
func (CheckComplianceGate) Opcode() Opcode { return OpCheckComplianceGate }
func (UpdateRegulatoryParameter) Opcode() Opcode {
	return OpUpdateRegulatoryParameter
}
func (SubmitDispute) Opcode() Opcode { return OpSubmitDispute }
func (VoteDispute) Opcode() Opcode   { return OpVoteDispute }

func (Join) isInstruction()                      {}
func (SubmitClaim) isInstruction()               {}
func (VerifyClaim) isInstruction()               {}
func (Mint) isInstruction()                      {}
func (Transfer) isInstruction()                  {}
func (Burn) isInstruction()                      {}
func (CreateProposal) isInstruction()            {}
func (Vote) isInstruction()                      {}
func (SubmitDocuments) isInstruction()           {}
func (UpdateComplianceStatus) isInstruction()    {}
func (CheckComplianceGate) isInstruction()       {}
func (UpdateRegulatoryParameter) isInstruction() {}
func (SubmitDispute) isInstruction()             {}
func (VoteDispute) isInstruction()               {}

// Decode parses raw instruction bytes: first byte opcode, remaining bytes
// an opcode-specific little-endian payload
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty instruction", ErrInvalidPayload)
	}
	opcode := Opcode(data[0])
	payload := data[1:]
	switch opcode {
	case OpJoin:
		if err := expectEmpty(opcode, payload); err != nil {
			return nil, err
		}
		return Join{}, nil
	case OpSubmitClaim:
		if err := expectEmpty(opcode, payload); err != nil {
			return nil, err
		}
		return SubmitClaim{}, nil
	case OpVerifyClaim:
		val, err := expectUint64(opcode, payload)
		if err != nil {
			return nil, err
		}
		return VerifyClaim{ClaimIndex: val}, nil
	case OpMint:
		val, err := expectUint64(opcode, payload)
		if err != nil {
			return nil, err
		}
		return Mint{Amount: val}, nil
	case OpTransfer:
		val, err := expectUint64(opcode, payload)
		if err != nil {
			return nil, err
		}
		return Transfer{Amount: val}, nil
	case OpBurn:
		val, err := expectUint64(opcode, payload)
		if err != nil {
			return nil, err
		}
		return Burn{Amount: val}, nil
	case OpCreateProposal:
		if len(payload) < 8 {
			return nil, payloadErr(opcode, "need at least 8 bytes")
		}
		desc := payload[8:]
		if !utf8.Valid(desc) {
			return nil, payloadErr(opcode, "description is not valid UTF-8")
		}
		return CreateProposal{
			DurationSeconds: int64(binary.LittleEndian.Uint64(payload[:8])),
			Description:     string(desc),
		}, nil
	case OpVote:
		if len(payload) != 9 {
			return nil, payloadErr(opcode, "need exactly 9 bytes")
		}
		choice := VoteChoice(payload[8])
		if choice != VoteNo && choice != VoteYes {
			return nil, payloadErr(opcode, "invalid vote choice")
		}
		return Vote{
			ProposalIndex: binary.LittleEndian.Uint64(payload[:8]),
			Choice:        choice,
		}, nil
	case OpSubmitDocuments:
		if err := expectEmpty(opcode, payload); err != nil {
			return nil, err
		}
		return SubmitDocuments{}, nil
	case OpUpdateComplianceStatus:
		if len(payload) != 2 {
			return nil, payloadErr(opcode, "need exactly 2 bytes")
		}
		return UpdateComplianceStatus{
			KycResult: payload[0],
			AmlResult: payload[1],
		}, nil
	case OpCheckComplianceGate:
		if err := expectEmpty(opcode, payload); err != nil {
			return nil, err
		}
		return CheckComplianceGate{}, nil
	case OpUpdateRegulatoryParameter:
		val, err := expectUint64(opcode, payload)
		if err != nil {
			return nil, err
		}
		return UpdateRegulatoryParameter{NewLimit: val}, nil
	case OpSubmitDispute:
		if !utf8.Valid(payload) {
			return nil, payloadErr(opcode, "description is not valid UTF-8")
		}
		return SubmitDispute{Description: string(payload)}, nil
	case OpVoteDispute:
		if len(payload) != 9 {
			return nil, payloadErr(opcode, "need exactly 9 bytes")
		}
		// Any nonzero byte counts as support for the initiator
		return VoteDispute{
			DisputeIndex: binary.LittleEndian.Uint64(payload[:8]),
			Support:      payload[8] != 0,
		}, nil
	default:
		return nil, fmt.Errorf(
			"%w: opcode %d",
			ErrUnknownOperation,
			uint8(opcode),
		)
	}
}

// Encode produces the wire form of an instruction. This is the inverse of
// Decode and is used by client tooling and tests.
func Encode(ins Instruction) []byte {
	switch i := ins.(type) {
	case Join, SubmitClaim, SubmitDocuments, CheckComplianceGate:
		return []byte{byte(ins.Opcode())}
	case VerifyClaim:
		return withUint64(i.Opcode(), i.ClaimIndex)
	case Mint:
		return withUint64(i.Opcode(), i.Amount)
	case Transfer:
		return withUint64(i.Opcode(), i.Amount)
	case Burn:
		return withUint64(i.Opcode(), i.Amount)
	case CreateProposal:
		ret := withUint64(i.Opcode(), uint64(i.DurationSeconds))
		return append(ret, []byte(i.Description)...)
	case Vote:
		ret := withUint64(i.Opcode(), i.ProposalIndex)
		return append(ret, byte(i.Choice))
	case UpdateComplianceStatus:
		return []byte{byte(i.Opcode()), i.KycResult, i.AmlResult}
	case UpdateRegulatoryParameter:
		return withUint64(i.Opcode(), i.NewLimit)
	case SubmitDispute:
		ret := []byte{byte(i.Opcode())}
		return append(ret, []byte(i.Description)...)
	case VoteDispute:
		ret := withUint64(i.Opcode(), i.DisputeIndex)
		if i.Support {
			return append(ret, 1)
		}
		return append(ret, 0)
	default:
		// Unreachable: the union above is closed
		return nil
	}
}

func withUint64(opcode Opcode, val uint64) []byte {
	ret := make([]byte, 9)
	ret[0] = byte(opcode)
	binary.LittleEndian.PutUint64(ret[1:], val)
	return ret
}

func payloadErr(opcode Opcode, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidPayload, opcode, msg)
}

func expectEmpty(opcode Opcode, payload []byte) error {
	if len(payload) != 0 {
		return payloadErr(opcode, "unexpected payload bytes")
	}
	return nil
}

func expectUint64(opcode Opcode, payload []byte) (uint64, error) {
	if len(payload) != 8 {
		return 0, payloadErr(opcode, "need exactly 8 bytes")
	}
	return binary.LittleEndian.Uint64(payload), nil
}
