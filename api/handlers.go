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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response
func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// handleHealth handles GET /health
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleSubmitInstruction handles POST /api/v0/instructions. The body
// carries the ledger record key, the positional account references, and
// hex instruction bytes; processing is all-or-nothing.
func (a *Api) handleSubmitInstruction(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req SubmitInstructionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"ValidationError",
			"malformed request body",
		)
		return
	}
	recordKey, err := ledger.IdentityFromHex(req.Record)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"ValidationError",
			"invalid record key",
		)
		return
	}
	insData, err := hex.DecodeString(req.Data)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"ValidationError",
			"invalid instruction hex",
		)
		return
	}
	accounts := make([]host.AccountRef, 0, len(req.Accounts))
	for _, reqAccount := range req.Accounts {
		key, err := ledger.IdentityFromHex(reqAccount.Key)
		if err != nil {
			writeError(
				w,
				http.StatusBadRequest,
				"ValidationError",
				"invalid account key",
			)
			return
		}
		var accountData []byte
		if reqAccount.Data != "" {
			accountData, err = hex.DecodeString(reqAccount.Data)
			if err != nil {
				writeError(
					w,
					http.StatusBadRequest,
					"ValidationError",
					"invalid account data hex",
				)
				return
			}
		}
		accounts = append(accounts, host.AccountRef{
			Key:    key,
			Signer: reqAccount.Signer,
			Data:   accountData,
		})
	}
	if err := a.node.SubmitInstruction(
		r.Context(),
		recordKey,
		accounts,
		insData,
	); err != nil {
		kind, status := errorKind(err)
		a.logger.Debug(
			"instruction rejected",
			"error", err,
		)
		writeError(w, status, kind, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SubmitInstructionResponse{
		Applied: true,
	})
}

func (a *Api) ledgerRecord(
	w http.ResponseWriter,
	r *http.Request,
) *ledger.Aggregate {
	recordKey, err := ledger.IdentityFromHex(r.PathValue("key"))
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"ValidationError",
			"invalid record key",
		)
		return nil
	}
	agg, err := a.node.Aggregate(recordKey)
	if err != nil {
		kind, status := errorKind(err)
		writeError(w, status, kind, err.Error())
		return nil
	}
	return agg
}

// handleLedgerRecord handles GET /api/v0/ledger/{key} and returns the
// decoded aggregate
func (a *Api) handleLedgerRecord(
	w http.ResponseWriter,
	r *http.Request,
) {
	agg := a.ledgerRecord(w, r)
	if agg == nil {
		return
	}
	resp := LedgerRecordResponse{
		Admin:      agg.Admin.String(),
		Treasury:   agg.Treasury.String(),
		Members:    make([]MemberResponse, 0, len(agg.Members)),
		Claims:     claimResponses(agg),
		Proposals:  proposalResponses(agg),
		Compliance: make([]ComplianceResponse, 0, len(agg.MemberCompliance)),
		Disputes:   disputeResponses(agg),
		ClaimLimit: agg.ClaimLimit,
	}
	for _, m := range agg.Members {
		resp.Members = append(resp.Members, MemberResponse{
			Address:  m.Address.String(),
			JoinedAt: m.JoinedAt,
		})
	}
	for _, mc := range agg.MemberCompliance {
		resp.Compliance = append(resp.Compliance, ComplianceResponse{
			Member:    mc.Member.String(),
			KycStatus: mc.KycStatus.String(),
			AmlStatus: mc.AmlStatus.String(),
		})
	}
	if agg.TokenManagement != nil {
		totalSupply := agg.TokenManagement.TotalSupply
		resp.TotalSupply = &totalSupply
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLedgerClaims handles GET /api/v0/ledger/{key}/claims
func (a *Api) handleLedgerClaims(
	w http.ResponseWriter,
	r *http.Request,
) {
	agg := a.ledgerRecord(w, r)
	if agg == nil {
		return
	}
	writeJSON(w, http.StatusOK, claimResponses(agg))
}

// handleLedgerProposals handles GET /api/v0/ledger/{key}/proposals
func (a *Api) handleLedgerProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	agg := a.ledgerRecord(w, r)
	if agg == nil {
		return
	}
	writeJSON(w, http.StatusOK, proposalResponses(agg))
}

// handleLedgerDisputes handles GET /api/v0/ledger/{key}/disputes
func (a *Api) handleLedgerDisputes(
	w http.ResponseWriter,
	r *http.Request,
) {
	agg := a.ledgerRecord(w, r)
	if agg == nil {
		return
	}
	writeJSON(w, http.StatusOK, disputeResponses(agg))
}

func claimResponses(agg *ledger.Aggregate) []ClaimResponse {
	ret := make([]ClaimResponse, 0, len(agg.Claims))
	for _, c := range agg.Claims {
		ret = append(ret, ClaimResponse{
			Id:       c.Id,
			Member:   c.Member.String(),
			Amount:   c.Amount,
			Verified: c.Verified,
		})
	}
	return ret
}

func disputeResponses(agg *ledger.Aggregate) []DisputeResponse {
	ret := make([]DisputeResponse, 0, len(agg.Disputes))
	for _, d := range agg.Disputes {
		votes := make([]DisputeVoteResponse, 0, len(d.Votes))
		for _, v := range d.Votes {
			votes = append(votes, DisputeVoteResponse{
				Voter:   v.Voter.String(),
				Support: v.Support,
			})
		}
		ret = append(ret, DisputeResponse{
			Id:          d.Id,
			ClaimId:     d.ClaimId,
			Initiator:   d.Initiator.String(),
			Respondent:  d.Respondent.String(),
			Description: d.Description,
			Status:      d.Status.String(),
			Votes:       votes,
		})
	}
	return ret
}

func proposalResponses(agg *ledger.Aggregate) []ProposalResponse {
	ret := make([]ProposalResponse, 0, len(agg.Proposals))
	for _, p := range agg.Proposals {
		ret = append(ret, ProposalResponse{
			Id:          p.Id,
			Proposer:    p.Proposer.String(),
			Description: p.Description,
			Status:      p.Status.String(),
			VoteStart:   p.VoteStart,
			VoteEnd:     p.VoteEnd,
			YesVotes:    p.YesVotes,
			NoVotes:     p.NoVotes,
		})
	}
	return ret
}
