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

package token

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blinklabs-io/quill/ledger"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrInsufficientBalance indicates a debit larger than the account's balance
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrBalanceOverflow indicates a credit that would overflow the balance
	ErrBalanceOverflow = errors.New("token balance overflow")
)

//nolint:recvcheck
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	v, ok := val.(string)
	if !ok {
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	tmpUint, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return err
	}
	*u = Uint64(tmpUint)
	return nil
}

// Balance is one token account's holdings
type Balance struct {
	Owner  []byte `gorm:"uniqueIndex;size:32"`
	ID     uint   `gorm:"primarykey"`
	Amount Uint64
}

func (Balance) TableName() string {
	return "balance"
}

// Ledger is a SQLite-backed fungible-token sub-ledger. The ledger engine
// delegates the actual balance movement for mint, transfer, and burn here
// and keeps only total-supply accounting locally.
type Ledger struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewLedger creates a token sub-ledger. Uses an in-memory database when
// dataDir is empty, useful for testing.
func NewLedger(dataDir string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var db *gorm.DB
	var err error
	if dataDir == "" {
		// cache=shared allows multiple connections to share the same in-memory database
		db, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(
			dataDir,
			"tokens.sqlite",
		)
		// WAL journal mode to allow readers alongside the writer
		connOpts := "_pragma=journal_mode(WAL)"
		db, err = gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?%s", dbPath, connOpts),
			),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	}
	if err := db.AutoMigrate(&Balance{}); err != nil {
		return nil, err
	}
	return &Ledger{
		db:     db,
		logger: logger,
	}, nil
}

// Close releases the underlying database connection
func (l *Ledger) Close() error {
	sqlDb, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}

// BalanceOf returns the current balance for an owner. Owners without a
// balance row hold zero.
func (l *Ledger) BalanceOf(
	ctx context.Context,
	owner ledger.Identity,
) (uint64, error) {
	var row Balance
	result := l.db.WithContext(ctx).
		Where("owner = ?", owner[:]).
		First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return uint64(row.Amount), nil
}

// Mint credits newly issued tokens to the destination account
func (l *Ledger) Mint(
	ctx context.Context,
	destination ledger.Identity,
	amount uint64,
) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return credit(tx, destination, amount)
	})
}

// Transfer moves tokens from source to destination
func (l *Ledger) Transfer(
	ctx context.Context,
	source ledger.Identity,
	destination ledger.Identity,
	amount uint64,
) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debit(tx, source, amount); err != nil {
			return err
		}
		return credit(tx, destination, amount)
	})
}

// Burn removes tokens from the given account
func (l *Ledger) Burn(
	ctx context.Context,
	account ledger.Identity,
	amount uint64,
) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return debit(tx, account, amount)
	})
}

func credit(tx *gorm.DB, owner ledger.Identity, amount uint64) error {
	var row Balance
	result := tx.Where("owner = ?", owner[:]).First(&row)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		row = Balance{Owner: owner[:]}
	}
	if uint64(row.Amount) > math.MaxUint64-amount {
		return fmt.Errorf("%w: account %s", ErrBalanceOverflow, owner)
	}
	row.Amount += Uint64(amount)
	return tx.Save(&row).Error
}

func debit(tx *gorm.DB, owner ledger.Identity, amount uint64) error {
	var row Balance
	result := tx.Where("owner = ?", owner[:]).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf(
				"%w: account %s holds 0",
				ErrInsufficientBalance,
				owner,
			)
		}
		return result.Error
	}
	if uint64(row.Amount) < amount {
		return fmt.Errorf(
			"%w: account %s holds %d, needs %d",
			ErrInsufficientBalance,
			owner,
			uint64(row.Amount),
			amount,
		)
	}
	row.Amount -= Uint64(amount)
	return tx.Save(&row).Error
}
