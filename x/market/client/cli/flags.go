package cli

// Flag names shared by the market tx and query commands
const (
	FlagOwner    = "owner"
	FlagDSeq     = "dseq"
	FlagGSeq     = "gseq"
	FlagOSeq     = "oseq"
	FlagProvider = "provider"
	FlagBSeq     = "bseq"

	FlagState         = "state"
	FlagReason        = "reason"
	FlagEvidence      = "evidence"
	FlagExpiresIn     = "expires-in"
	FlagIsFinal       = "final"
	FlagSource        = "source"
	FlagUnsettledOnly = "unsettled-only"
)
