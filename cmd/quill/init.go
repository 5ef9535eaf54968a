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

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/quill"
	"github.com/blinklabs-io/quill/internal/config"
	"github.com/blinklabs-io/quill/internal/node"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/spf13/cobra"
)

var initFlags = struct {
	admin    string
	treasury string
	tokens   bool
}{}

func initRun(args []string, cfg *config.Config) {
	logger := commonRun()

	recordKey, err := ledger.IdentityFromHex(args[0])
	if err != nil {
		slog.Error(fmt.Sprintf("invalid record key: %s", err))
		os.Exit(1)
	}
	admin, err := ledger.IdentityFromHex(initFlags.admin)
	if err != nil {
		slog.Error(fmt.Sprintf("invalid admin identity: %s", err))
		os.Exit(1)
	}
	treasury, err := ledger.IdentityFromHex(initFlags.treasury)
	if err != nil {
		slog.Error(fmt.Sprintf("invalid treasury identity: %s", err))
		os.Exit(1)
	}

	nodeCfg, err := node.BuildNodeConfig(cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if err := quill.InitializeRecord(
		nodeCfg,
		recordKey,
		admin,
		treasury,
		initFlags.tokens,
	); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func initCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [record-key]",
		Short: "Create a new ledger record",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			initRun(args, cfg)
		},
	}
	cmd.Flags().
		StringVar(&initFlags.admin, "admin", "", "hex-encoded admin identity")
	cmd.Flags().
		StringVar(&initFlags.treasury, "treasury", "", "hex-encoded treasury identity")
	cmd.Flags().
		BoolVar(&initFlags.tokens, "tokens", false, "enable the token treasury")
	_ = cmd.MarkFlagRequired("admin")
	_ = cmd.MarkFlagRequired("treasury")
	return cmd
}
