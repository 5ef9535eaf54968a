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

package quill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/blinklabs-io/quill/api"
	"github.com/blinklabs-io/quill/event"
	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/blinklabs-io/quill/processor"
	"github.com/blinklabs-io/quill/token"
)

// Node wires the instruction processor to a concrete host environment:
// badger-backed account storage, the SQLite token sub-ledger, the event
// bus, and the REST API.
type Node struct {
	config        Config
	logger        *slog.Logger
	store         *host.Store
	tokens        *token.Ledger
	eventBus      *event.EventBus
	processor     *processor.Processor
	api           *api.Api
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
}

// New creates a new node from the provided config
func New(config Config) (*Node, error) {
	if config.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		config.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n := &Node{
		config:   config,
		logger:   config.logger,
		eventBus: event.NewEventBus(config.promRegistry),
		done:     make(chan struct{}),
	}
	return n, nil
}

func (n *Node) openStores() error {
	store, err := host.NewStore(
		host.WithLogger(n.logger),
		host.WithDataDir(n.config.dataDir),
	)
	if err != nil {
		return fmt.Errorf("failed to open account store: %w", err)
	}
	n.store = store
	tokenDataDir := n.config.dataDir
	if tokenDataDir != "" {
		tokenDataDir = filepath.Join(tokenDataDir, "tokens")
	}
	tokens, err := token.NewLedger(tokenDataDir, n.logger)
	if err != nil {
		return fmt.Errorf("failed to open token sub-ledger: %w", err)
	}
	n.tokens = tokens
	n.processor = processor.NewProcessor(
		processor.ProcessorConfig{
			Logger:       n.logger,
			EventBus:     n.eventBus,
			PromRegistry: n.config.promRegistry,
			Tokens:       n.tokens,
			Clock:        n.config.clock,
			ProgramID:    n.config.programID,
		},
	)
	return nil
}

// Run starts the node and blocks until Stop is called
func (n *Node) Run() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	if err := n.openStores(); err != nil {
		return err
	}
	// Start API listener
	n.api = api.New(
		api.Config{
			ListenAddress: n.config.apiListenAddr,
		},
		n,
		n.logger,
	)
	if err := n.api.Start(context.Background()); err != nil {
		return err
	}

	// Wait for shutdown signal
	<-n.done
	return nil
}

// Stop shuts the node down gracefully
func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		n.config.shutdownTimeout,
	)
	defer cancel()

	var err error

	n.logger.Debug("starting graceful shutdown")

	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	if n.tokens != nil {
		if closeErr := n.tokens.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("token sub-ledger close: %w", closeErr),
			)
		}
	}

	if n.store != nil {
		if closeErr := n.store.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("account store close: %w", closeErr),
			)
		}
	}

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}

// EventBus returns the node's event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// CreateRecord initializes a new aggregate record and persists it in a
// fresh storage slot owned by the program
func (n *Node) CreateRecord(
	recordKey ledger.Identity,
	admin ledger.Identity,
	treasury ledger.Identity,
	withTokens bool,
) error {
	agg := ledger.NewAggregate(admin, treasury, withTokens)
	data, err := agg.EncodeToSlot(int(n.config.slotCapacity))
	if err != nil {
		return err
	}
	if err := n.store.CreateSlot(
		recordKey,
		n.config.programID,
		n.config.slotCapacity,
		data,
	); err != nil {
		return err
	}
	n.logger.Info(
		"ledger record created",
		"component", "node",
		"record", recordKey.String(),
		"admin", admin.String(),
		"tokens", withTokens,
	)
	return nil
}

// SubmitInstruction processes one instruction against the given ledger
// record. The storage slot's read-modify-write runs inside a single
// store transaction, so a failed instruction leaves the record
// byte-for-byte unchanged.
func (n *Node) SubmitInstruction(
	ctx context.Context,
	recordKey ledger.Identity,
	accounts []host.AccountRef,
	data []byte,
) error {
	return n.store.UpdateSlot(
		recordKey,
		func(slot *host.Slot) ([]byte, error) {
			inv := &host.Invocation{
				ProgramID: n.config.programID,
				Data:      data,
				Accounts: append(
					[]host.AccountRef{
						{
							Key:      recordKey,
							Owner:    slot.Owner,
							Writable: true,
							Data:     slot.Data,
						},
					},
					accounts...,
				),
			}
			return n.processor.Process(ctx, inv)
		},
	)
}

// Aggregate reads and decodes the current aggregate record
func (n *Node) Aggregate(
	recordKey ledger.Identity,
) (*ledger.Aggregate, error) {
	slot, err := n.store.GetSlot(recordKey)
	if err != nil {
		return nil, err
	}
	return ledger.Decode(slot.Data)
}

// TokenBalance reads a balance from the token sub-ledger
func (n *Node) TokenBalance(
	ctx context.Context,
	owner ledger.Identity,
) (uint64, error) {
	return n.tokens.BalanceOf(ctx, owner)
}

// InitializeRecord creates a new ledger record in the configured data
// directory without starting the node
func InitializeRecord(
	config Config,
	recordKey ledger.Identity,
	admin ledger.Identity,
	treasury ledger.Identity,
	withTokens bool,
) error {
	n, err := New(config)
	if err != nil {
		return err
	}
	if err := n.openStores(); err != nil {
		return err
	}
	defer func() {
		_ = n.tokens.Close()
		_ = n.store.Close()
	}()
	return n.CreateRecord(recordKey, admin, treasury, withTokens)
}
