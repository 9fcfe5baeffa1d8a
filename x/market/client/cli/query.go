package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// GetQueryCmd returns the cli query commands for the market module
func GetQueryCmd() *cobra.Command {
	marketQueryCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the market module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	marketQueryCmd.AddCommand(
		GetCmdQueryParams(),
		GetCmdQueryEscrow(),
		GetCmdQueryLease(),
		GetCmdQueryLeases(),
		GetCmdQueryUsageRecord(),
		GetCmdQueryUsageRecords(),
		GetCmdQuerySettlements(),
		GetCmdQueryRewards(),
	)

	return marketQueryCmd
}

func printJSON(clientCtx client.Context, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return clientCtx.PrintRaw(bz)
}

// GetCmdQueryParams returns the command to query module parameters
func GetCmdQueryParams() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Query the current market module parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.Params(context.Background(), &types.QueryParamsRequest{})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryEscrow returns the command to query one escrow
func GetCmdQueryEscrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow [escrow-id]",
		Short: "Query an escrow by id, or by order with the id flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			req := &types.QueryEscrowRequest{}
			if len(args) == 1 {
				req.EscrowID = args[0]
			} else {
				orderID, err := parseOrderIDFlags(cmd, "")
				if err != nil {
					return err
				}
				req.OrderID = &orderID
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.Escrow(context.Background(), req)
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	addOrderIDFlags(cmd)
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryLease returns the command to query one lease
func GetCmdQueryLease() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lease",
		Short: "Query a lease by its composite id flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			leaseID, err := parseLeaseIDFlags(cmd, "")
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.Lease(context.Background(), &types.QueryLeaseRequest{LeaseID: leaseID})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	addLeaseIDFlags(cmd)
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryLeases returns the command to query leases with filters
func GetCmdQueryLeases() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leases",
		Short: "Query leases matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			filters, err := parseLeaseFilters(cmd)
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.Leases(context.Background(), &types.QueryLeasesRequest{Filters: filters})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	cmd.Flags().String(FlagOwner, "", "Filter by owner address")
	cmd.Flags().Uint64(FlagDSeq, 0, "Filter by deployment sequence")
	cmd.Flags().Uint32(FlagGSeq, 0, "Filter by group sequence")
	cmd.Flags().Uint32(FlagOSeq, 0, "Filter by order sequence")
	cmd.Flags().String(FlagProvider, "", "Filter by provider address")
	cmd.Flags().String(FlagState, "", "Filter by lease state (active, insufficient_funds, closed)")
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryUsageRecord returns the command to query one usage record
func GetCmdQueryUsageRecord() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage-record [usage-id]",
		Short: "Query a usage record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.UsageRecord(context.Background(), &types.QueryUsageRecordRequest{UsageID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryUsageRecords returns the command to query an order's usage records
func GetCmdQueryUsageRecords() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage-records",
		Short: "Query an order's usage records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			orderID, err := parseOrderIDFlags(cmd, "")
			if err != nil {
				return err
			}
			unsettledOnly, err := cmd.Flags().GetBool(FlagUnsettledOnly)
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.UsageRecords(context.Background(), &types.QueryUsageRecordsRequest{
				OrderID:       orderID,
				UnsettledOnly: unsettledOnly,
			})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	addOrderIDFlags(cmd)
	cmd.Flags().Bool(FlagUnsettledOnly, false, "Only records not yet settled")
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQuerySettlements returns the command to query an order's settlements
func GetCmdQuerySettlements() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlements",
		Short: "Query an order's settlements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			orderID, err := parseOrderIDFlags(cmd, "")
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.Settlements(context.Background(), &types.QuerySettlementsRequest{OrderID: orderID})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	addOrderIDFlags(cmd)
	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryRewards returns the command to query a recipient's rewards
func GetCmdQueryRewards() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards [recipient]",
		Short: "Query a recipient's claimable reward accumulators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			queryClient := types.NewQueryClient(clientCtx)
			res, err := queryClient.Rewards(context.Background(), &types.QueryRewardsRequest{Recipient: args[0]})
			if err != nil {
				return err
			}
			return printJSON(clientCtx, res)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

func parseLeaseFilters(cmd *cobra.Command) (types.LeaseFilters, error) {
	owner, err := cmd.Flags().GetString(FlagOwner)
	if err != nil {
		return types.LeaseFilters{}, err
	}
	dseq, err := cmd.Flags().GetUint64(FlagDSeq)
	if err != nil {
		return types.LeaseFilters{}, err
	}
	gseq, err := cmd.Flags().GetUint32(FlagGSeq)
	if err != nil {
		return types.LeaseFilters{}, err
	}
	oseq, err := cmd.Flags().GetUint32(FlagOSeq)
	if err != nil {
		return types.LeaseFilters{}, err
	}
	provider, err := cmd.Flags().GetString(FlagProvider)
	if err != nil {
		return types.LeaseFilters{}, err
	}
	state, err := cmd.Flags().GetString(FlagState)
	if err != nil {
		return types.LeaseFilters{}, err
	}
	return types.LeaseFilters{
		Owner:    owner,
		DSeq:     dseq,
		GSeq:     gseq,
		OSeq:     oseq,
		Provider: provider,
		State:    state,
	}, nil
}
