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
	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
)

// TokenLedger is the external fungible-token sub-ledger the treasury
// delegates balance movement to. The engine keeps only total-supply
// accounting locally.
type TokenLedger interface {
	Mint(
		ctx context.Context,
		destination ledger.Identity,
		amount uint64,
	) error
	Transfer(
		ctx context.Context,
		source ledger.Identity,
		destination ledger.Identity,
		amount uint64,
	) error
	Burn(ctx context.Context, account ledger.Identity, amount uint64) error
	BalanceOf(ctx context.Context, owner ledger.Identity) (uint64, error)
}

// TreasuryManager handles token mint, transfer, and burn
type TreasuryManager struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	tokens   TokenLedger
}

// Mint credits newly issued tokens to the destination via the external
// sub-ledger and increments the local total supply. The local overflow
// check runs before delegation so a failed mint leaves the sub-ledger
// untouched too.
func (t *TreasuryManager) Mint(
	ctx context.Context,
	agg *ledger.Aggregate,
	authority *host.AccountRef,
	destination *host.AccountRef,
	amount uint64,
) error {
	if agg.TokenManagement == nil {
		return fmt.Errorf(
			"%w: aggregate has no token management",
			ErrInvalidState,
		)
	}
	if err := requireSigner(authority, "mint authority"); err != nil {
		return err
	}
	if agg.TokenManagement.TotalSupply > math.MaxUint64-amount {
		return fmt.Errorf("%w: total supply overflow", ErrArithmetic)
	}
	if err := t.tokens.Mint(ctx, destination.Key, amount); err != nil {
		return fmt.Errorf("token sub-ledger mint: %w", err)
	}
	agg.TokenManagement.TotalSupply += amount
	t.logger.Info(
		"tokens minted",
		"component", "treasury",
		"destination", destination.Key.String(),
		"amount", amount,
		"total_supply", agg.TokenManagement.TotalSupply,
	)
	if t.eventBus != nil {
		t.eventBus.Publish(
			TokensMintedEventType,
			event.NewEvent(
				TokensMintedEventType,
				TokensMintedEvent{
					Destination: destination.Key,
					Amount:      amount,
					TotalSupply: agg.TokenManagement.TotalSupply,
				},
			),
		)
	}
	return nil
}

// Transfer moves tokens between accounts via the external sub-ledger.
// Transfers don't affect total supply, so there is no local accounting
// change.
func (t *TreasuryManager) Transfer(
	ctx context.Context,
	source *host.AccountRef,
	destination *host.AccountRef,
	authority *host.AccountRef,
	amount uint64,
) error {
	if err := requireSigner(authority, "transfer authority"); err != nil {
		return err
	}
	if err := t.tokens.Transfer(
		ctx,
		source.Key,
		destination.Key,
		amount,
	); err != nil {
		return fmt.Errorf("token sub-ledger transfer: %w", err)
	}
	t.logger.Info(
		"tokens transferred",
		"component", "treasury",
		"source", source.Key.String(),
		"destination", destination.Key.String(),
		"amount", amount,
	)
	if t.eventBus != nil {
		t.eventBus.Publish(
			TokensTransferredEventType,
			event.NewEvent(
				TokensTransferredEventType,
				TokensTransferredEvent{
					Source:      source.Key,
					Destination: destination.Key,
					Amount:      amount,
				},
			),
		)
	}
	return nil
}

// Burn removes tokens from the given account via the external sub-ledger
// and decrements the local total supply. The underflow check runs before
// delegation.
func (t *TreasuryManager) Burn(
	ctx context.Context,
	agg *ledger.Aggregate,
	tokenAccount *host.AccountRef,
	authority *host.AccountRef,
	amount uint64,
) error {
	if agg.TokenManagement == nil {
		return fmt.Errorf(
			"%w: aggregate has no token management",
			ErrInvalidState,
		)
	}
	if err := requireSigner(authority, "burn authority"); err != nil {
		return err
	}
	if agg.TokenManagement.TotalSupply < amount {
		return fmt.Errorf("%w: total supply underflow", ErrArithmetic)
	}
	if err := t.tokens.Burn(ctx, tokenAccount.Key, amount); err != nil {
		return fmt.Errorf("token sub-ledger burn: %w", err)
	}
	agg.TokenManagement.TotalSupply -= amount
	t.logger.Info(
		"tokens burned",
		"component", "treasury",
		"account", tokenAccount.Key.String(),
		"amount", amount,
		"total_supply", agg.TokenManagement.TotalSupply,
	)
	if t.eventBus != nil {
		t.eventBus.Publish(
			TokensBurnedEventType,
			event.NewEvent(
				TokensBurnedEventType,
				TokensBurnedEvent{
					Account:     tokenAccount.Key,
					Amount:      amount,
					TotalSupply: agg.TokenManagement.TotalSupply,
				},
			),
		)
	}
	return nil
}
