package cli

import (
	"encoding/base64"
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// GetTxCmd returns the transaction commands for the market module
func GetTxCmd() *cobra.Command {
	marketTxCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Market transaction subcommands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	marketTxCmd.AddCommand(
		CmdCreateEscrow(),
		CmdActivateEscrow(),
		CmdReleaseEscrow(),
		CmdRefundEscrow(),
		CmdDisputeEscrow(),
		CmdRecordUsage(),
		CmdAcknowledgeUsage(),
		CmdSettleOrder(),
		CmdClaimRewards(),
		CmdCloseLease(),
	)

	return marketTxCmd
}

// CmdCreateEscrow returns a CLI command handler for opening an order escrow
func CmdCreateEscrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-escrow [amount]",
		Short: "Open the escrow account for an order",
		Long: `Open the escrow account for an order, depositing the given amount.

Example:
  $ virtengined tx market create-escrow 1000000 \
    --dseq 42 --gseq 1 --oseq 1 --expires-in 86400 --from buyer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			amount, ok := math.NewIntFromString(args[0])
			if !ok {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			orderID, err := parseOrderIDFlags(cmd, clientCtx.GetFromAddress().String())
			if err != nil {
				return err
			}
			expiresIn, err := cmd.Flags().GetInt64(FlagExpiresIn)
			if err != nil {
				return err
			}

			msg := types.NewMsgCreateEscrow(clientCtx.GetFromAddress().String(), orderID, amount, expiresIn)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	addOrderIDFlags(cmd)
	cmd.Flags().Int64(FlagExpiresIn, 86400, "Escrow lifetime in seconds")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdActivateEscrow returns a CLI command handler for binding an escrow to a lease
func CmdActivateEscrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate-escrow [escrow-id] [recipient]",
		Short: "Activate an escrow, binding it to a lease and its payout address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			leaseID, err := parseLeaseIDFlags(cmd, clientCtx.GetFromAddress().String())
			if err != nil {
				return err
			}

			msg := types.NewMsgActivateEscrow(clientCtx.GetFromAddress().String(), args[0], leaseID, args[1])
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	addLeaseIDFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdReleaseEscrow returns a CLI command handler for a direct escrow release
func CmdReleaseEscrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release-escrow [escrow-id] [amount]",
		Short: "Release escrowed funds to the provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			amount, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			reason, err := cmd.Flags().GetString(FlagReason)
			if err != nil {
				return err
			}

			msg := types.NewMsgReleaseEscrow(clientCtx.GetFromAddress().String(), args[0], amount, reason)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(FlagReason, "manual release", "Reason recorded with the release")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRefundEscrow returns a CLI command handler for refunding an escrow
func CmdRefundEscrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refund-escrow [escrow-id]",
		Short: "Refund the remaining escrow balance to the sender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			reason, err := cmd.Flags().GetString(FlagReason)
			if err != nil {
				return err
			}

			msg := types.NewMsgRefundEscrow(clientCtx.GetFromAddress().String(), args[0], reason)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(FlagReason, "manual refund", "Reason recorded with the refund")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdDisputeEscrow returns a CLI command handler for disputing an escrow
func CmdDisputeEscrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispute-escrow [escrow-id]",
		Short: "Freeze an active escrow pending dispute resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			reason, err := cmd.Flags().GetString(FlagReason)
			if err != nil {
				return err
			}
			evidenceB64, err := cmd.Flags().GetString(FlagEvidence)
			if err != nil {
				return err
			}
			var evidence []byte
			if evidenceB64 != "" {
				evidence, err = base64.StdEncoding.DecodeString(evidenceB64)
				if err != nil {
					return fmt.Errorf("invalid evidence: %w", err)
				}
			}

			msg := types.NewMsgDisputeEscrow(clientCtx.GetFromAddress().String(), args[0], reason, evidence)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(FlagReason, "", "Reason for the dispute")
	cmd.Flags().String(FlagEvidence, "", "Base64-encoded dispute evidence")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRecordUsage returns a CLI command handler for submitting a signed usage record
func CmdRecordUsage() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record-usage [units] [usage-type] [period-start] [period-end] [unit-price] [signature]",
		Short: "Submit a signed usage record for a lease",
		Long: `Submit a signed usage record for a lease. The signature is the
provider's base64-encoded signature over the canonical record digest.

Example:
  $ virtengined tx market record-usage 10 cpu 0 60 5 <signature> \
    --owner ve1... --dseq 42 --gseq 1 --oseq 1 --bseq 1 --from provider`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			units, err := cast.ToUint64E(args[0])
			if err != nil {
				return fmt.Errorf("invalid usage units: %w", err)
			}
			periodStart, err := cast.ToInt64E(args[2])
			if err != nil {
				return fmt.Errorf("invalid period start: %w", err)
			}
			periodEnd, err := cast.ToInt64E(args[3])
			if err != nil {
				return fmt.Errorf("invalid period end: %w", err)
			}
			unitPrice, ok := math.NewIntFromString(args[4])
			if !ok {
				return fmt.Errorf("invalid unit price %q", args[4])
			}
			signature, err := base64.StdEncoding.DecodeString(args[5])
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}

			leaseID, err := parseLeaseIDFlags(cmd, clientCtx.GetFromAddress().String())
			if err != nil {
				return err
			}

			msg := types.NewMsgRecordUsage(clientCtx.GetFromAddress().String(), leaseID.OrderID(), leaseID, units, args[1], periodStart, periodEnd, unitPrice, signature)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	addLeaseIDFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdAcknowledgeUsage returns a CLI command handler for countersigning a usage record
func CmdAcknowledgeUsage() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acknowledge-usage [usage-id] [signature]",
		Short: "Countersign a usage record as the order owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			signature, err := base64.StdEncoding.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}

			msg := types.NewMsgAcknowledgeUsage(clientCtx.GetFromAddress().String(), args[0], signature)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSettleOrder returns a CLI command handler for settling an order's usage
func CmdSettleOrder() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle-order [usage-record-id]...",
		Short: "Fold usage records into a settlement, paying the provider from escrow",
		Long: `Fold usage records into a settlement, paying the provider from escrow.
With no record ids, every unsettled record of the order is settled.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			orderID, err := parseOrderIDFlags(cmd, clientCtx.GetFromAddress().String())
			if err != nil {
				return err
			}
			isFinal, err := cmd.Flags().GetBool(FlagIsFinal)
			if err != nil {
				return err
			}

			msg := types.NewMsgSettleOrder(clientCtx.GetFromAddress().String(), orderID, args, isFinal)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	addOrderIDFlags(cmd)
	cmd.Flags().Bool(FlagIsFinal, false, "Mark this as the terminal settlement for the order")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimRewards returns a CLI command handler for claiming accrued rewards
func CmdClaimRewards() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-rewards",
		Short: "Claim accrued provider rewards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			source, err := cmd.Flags().GetString(FlagSource)
			if err != nil {
				return err
			}

			msg := types.NewMsgClaimRewards(clientCtx.GetFromAddress().String(), source)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(FlagSource, "", "Claim only this reward source (default: all)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCloseLease returns a CLI command handler for closing a lease
func CmdCloseLease() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-lease",
		Short: "Close a lease as its owner or provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			leaseID, err := parseLeaseIDFlags(cmd, clientCtx.GetFromAddress().String())
			if err != nil {
				return err
			}

			msg := types.NewMsgCloseLease(clientCtx.GetFromAddress().String(), leaseID)
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	addLeaseIDFlags(cmd)
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

func addOrderIDFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagOwner, "", "Order owner address (default: the --from address)")
	cmd.Flags().Uint64(FlagDSeq, 0, "Deployment sequence")
	cmd.Flags().Uint32(FlagGSeq, 1, "Group sequence")
	cmd.Flags().Uint32(FlagOSeq, 1, "Order sequence")
}

func addLeaseIDFlags(cmd *cobra.Command) {
	addOrderIDFlags(cmd)
	cmd.Flags().String(FlagProvider, "", "Provider address (default: the --from address)")
	cmd.Flags().Uint32(FlagBSeq, 1, "Bid sequence")
}

func parseOrderIDFlags(cmd *cobra.Command, defaultOwner string) (types.OrderID, error) {
	owner, err := cmd.Flags().GetString(FlagOwner)
	if err != nil {
		return types.OrderID{}, err
	}
	if owner == "" {
		owner = defaultOwner
	}
	dseq, err := cmd.Flags().GetUint64(FlagDSeq)
	if err != nil {
		return types.OrderID{}, err
	}
	gseq, err := cmd.Flags().GetUint32(FlagGSeq)
	if err != nil {
		return types.OrderID{}, err
	}
	oseq, err := cmd.Flags().GetUint32(FlagOSeq)
	if err != nil {
		return types.OrderID{}, err
	}
	return types.OrderID{Owner: owner, DSeq: dseq, GSeq: gseq, OSeq: oseq}, nil
}

func parseLeaseIDFlags(cmd *cobra.Command, defaultProvider string) (types.LeaseID, error) {
	orderID, err := parseOrderIDFlags(cmd, defaultProvider)
	if err != nil {
		return types.LeaseID{}, err
	}
	provider, err := cmd.Flags().GetString(FlagProvider)
	if err != nil {
		return types.LeaseID{}, err
	}
	if provider == "" {
		provider = defaultProvider
	}
	bseq, err := cmd.Flags().GetUint32(FlagBSeq)
	if err != nil {
		return types.LeaseID{}, err
	}
	return types.LeaseID{
		Owner:    orderID.Owner,
		DSeq:     orderID.DSeq,
		GSeq:     orderID.GSeq,
		OSeq:     orderID.OSeq,
		Provider: provider,
		BSeq:     bseq,
	}, nil
}
