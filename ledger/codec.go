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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// The aggregate is persisted with a fixed append-order binary layout:
// little-endian fixed-width integers, u32 length prefixes on sequences
// and strings, u8 booleans, and u8 presence tags on the optional
// TokenManagement field and dispute claim links. The layout is not
// self-versioning: adding a
// field changes the layout for every existing record, so decode and
// encode must stay symmetric for the whole lifetime of a deployed
// aggregate.

var (
	// ErrDecode indicates a truncated or structurally inconsistent record buffer
	ErrDecode = errors.New("ledger record decode failure")
	// ErrCapacity indicates an encoded record too large for its storage slot
	ErrCapacity = errors.New("ledger record exceeds slot capacity")
)

// Encode serializes the aggregate into its binary layout. Encoding is
// deterministic: equal aggregates produce identical buffers.
func (a *Aggregate) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(a.Admin[:])
	buf.Write(a.Treasury[:])
	if err := writeLen(&buf, len(a.Members)); err != nil {
		return nil, err
	}
	for _, m := range a.Members {
		buf.Write(m.Address[:])
		writeInt64(&buf, m.JoinedAt)
	}
	if err := writeLen(&buf, len(a.Claims)); err != nil {
		return nil, err
	}
	for _, c := range a.Claims {
		writeUint64(&buf, c.Id)
		buf.Write(c.Member[:])
		writeUint64(&buf, c.Amount)
		writeBool(&buf, c.Verified)
	}
	if err := writeLen(&buf, len(a.Proposals)); err != nil {
		return nil, err
	}
	for _, p := range a.Proposals {
		writeUint64(&buf, p.Id)
		buf.Write(p.Proposer[:])
		if err := writeLen(&buf, len(p.Description)); err != nil {
			return nil, err
		}
		buf.WriteString(p.Description)
		writeInt64(&buf, p.VoteStart)
		writeInt64(&buf, p.VoteEnd)
		writeUint64(&buf, p.YesVotes)
		writeUint64(&buf, p.NoVotes)
		buf.WriteByte(byte(p.Status))
	}
	if err := writeLen(&buf, len(a.MemberCompliance)); err != nil {
		return nil, err
	}
	for _, mc := range a.MemberCompliance {
		buf.Write(mc.Member[:])
		buf.WriteByte(byte(mc.KycStatus))
		buf.WriteByte(byte(mc.AmlStatus))
	}
	if a.TokenManagement != nil {
		buf.WriteByte(1)
		writeUint64(&buf, a.TokenManagement.TotalSupply)
	} else {
		buf.WriteByte(0)
	}
	writeUint64(&buf, a.ClaimLimit)
	if err := writeLen(&buf, len(a.Disputes)); err != nil {
		return nil, err
	}
	for _, d := range a.Disputes {
		writeUint64(&buf, d.Id)
		if d.ClaimId != nil {
			buf.WriteByte(1)
			writeUint64(&buf, *d.ClaimId)
		} else {
			buf.WriteByte(0)
		}
		buf.Write(d.Initiator[:])
		buf.Write(d.Respondent[:])
		if err := writeLen(&buf, len(d.Description)); err != nil {
			return nil, err
		}
		buf.WriteString(d.Description)
		buf.WriteByte(byte(d.Status))
		if err := writeLen(&buf, len(d.Votes)); err != nil {
			return nil, err
		}
		for _, v := range d.Votes {
			buf.Write(v.Voter[:])
			writeBool(&buf, v.Support)
		}
	}
	return buf.Bytes(), nil
}

// EncodeToSlot serializes the aggregate and verifies the result fits
// within the given storage slot capacity
func (a *Aggregate) EncodeToSlot(capacity int) ([]byte, error) {
	data, err := a.Encode()
	if err != nil {
		return nil, err
	}
	if len(data) > capacity {
		return nil, fmt.Errorf(
			"%w: encoded size %d, capacity %d",
			ErrCapacity,
			len(data),
			capacity,
		)
	}
	return data, nil
}

// Decode reconstructs an aggregate from its binary layout
func Decode(data []byte) (*Aggregate, error) {
	r := &recordReader{data: data}
	a := &Aggregate{}
	a.Admin = r.readIdentity()
	a.Treasury = r.readIdentity()
	memberCount := r.readLen()
	for range memberCount {
		if r.err != nil {
			break
		}
		a.Members = append(a.Members, Member{
			Address:  r.readIdentity(),
			JoinedAt: r.readInt64(),
		})
	}
	claimCount := r.readLen()
	for range claimCount {
		if r.err != nil {
			break
		}
		a.Claims = append(a.Claims, Claim{
			Id:       r.readUint64(),
			Member:   r.readIdentity(),
			Amount:   r.readUint64(),
			Verified: r.readBool(),
		})
	}
	proposalCount := r.readLen()
	for range proposalCount {
		if r.err != nil {
			break
		}
		p := Proposal{
			Id:          r.readUint64(),
			Proposer:    r.readIdentity(),
			Description: r.readString(),
			VoteStart:   r.readInt64(),
			VoteEnd:     r.readInt64(),
			YesVotes:    r.readUint64(),
			NoVotes:     r.readUint64(),
			Status:      ProposalStatus(r.readByte()),
		}
		if r.err == nil && p.Status > ProposalRejected {
			r.fail("invalid proposal status %d", p.Status)
		}
		a.Proposals = append(a.Proposals, p)
	}
	complianceCount := r.readLen()
	for range complianceCount {
		if r.err != nil {
			break
		}
		mc := MemberCompliance{
			Member:    r.readIdentity(),
			KycStatus: ComplianceStatus(r.readByte()),
			AmlStatus: ComplianceStatus(r.readByte()),
		}
		if r.err == nil &&
			(mc.KycStatus > ComplianceRejected ||
				mc.AmlStatus > ComplianceRejected) {
			r.fail("invalid compliance status")
		}
		a.MemberCompliance = append(a.MemberCompliance, mc)
	}
	switch r.readByte() {
	case 0:
		// no token management
	case 1:
		a.TokenManagement = &TokenManagement{
			TotalSupply: r.readUint64(),
		}
	default:
		r.fail("invalid token management tag")
	}
	a.ClaimLimit = r.readUint64()
	disputeCount := r.readLen()
	for range disputeCount {
		if r.err != nil {
			break
		}
		d := Dispute{
			Id: r.readUint64(),
		}
		switch r.readByte() {
		case 0:
			// no claim link
		case 1:
			claimId := r.readUint64()
			d.ClaimId = &claimId
		default:
			r.fail("invalid dispute claim tag")
		}
		d.Initiator = r.readIdentity()
		d.Respondent = r.readIdentity()
		d.Description = r.readString()
		d.Status = DisputeStatus(r.readByte())
		if r.err == nil && d.Status > DisputeClosed {
			r.fail("invalid dispute status %d", d.Status)
		}
		voteCount := r.readLen()
		for range voteCount {
			if r.err != nil {
				break
			}
			d.Votes = append(d.Votes, DisputeVote{
				Voter:   r.readIdentity(),
				Support: r.readBool(),
			})
		}
		a.Disputes = append(a.Disputes, d)
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.pos != len(r.data) {
		return nil, fmt.Errorf(
			"%w: %d trailing bytes",
			ErrDecode,
			len(r.data)-r.pos,
		)
	}
	return a, nil
}

// recordReader tracks a cursor into the record buffer and latches the
// first error so callers can read field-by-field without checking each one
type recordReader struct {
	data []byte
	pos  int
	err  error
}

func (r *recordReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
	}
}

func (r *recordReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.fail("truncated at offset %d (need %d bytes)", r.pos, n)
		return nil
	}
	ret := r.data[r.pos : r.pos+n]
	r.pos += n
	return ret
}

func (r *recordReader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *recordReader) readBool() bool {
	switch r.readByte() {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail("invalid boolean at offset %d", r.pos-1)
		return false
	}
}

func (r *recordReader) readUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *recordReader) readInt64() int64 {
	return int64(r.readUint64())
}

func (r *recordReader) readLen() int {
	b := r.take(4)
	if b == nil {
		return 0
	}
	length := binary.LittleEndian.Uint32(b)
	// Reject lengths that can't possibly fit in the remaining buffer to
	// avoid huge allocations from corrupt records
	if int(length) > len(r.data)-r.pos {
		r.fail("implausible sequence length %d at offset %d", length, r.pos-4)
		return 0
	}
	return int(length)
}

func (r *recordReader) readString() string {
	length := r.readLen()
	b := r.take(length)
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *recordReader) readIdentity() Identity {
	var ret Identity
	b := r.take(IdentitySize)
	if b != nil {
		copy(ret[:], b)
	}
	return ret
}

func writeLen(buf *bytes.Buffer, length int) error {
	if length < 0 || length > math.MaxUint32 {
		return fmt.Errorf("sequence length %d out of range", length)
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(length))
	buf.Write(tmp[:])
	return nil
}

func writeUint64(buf *bytes.Buffer, val uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], val)
	buf.Write(tmp[:])
}

func writeInt64(buf *bytes.Buffer, val int64) {
	writeUint64(buf, uint64(val))
}

func writeBool(buf *bytes.Buffer, val bool) {
	if val {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}
