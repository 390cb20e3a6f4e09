package ledger

// Ledger RPC endpoint paths. All paths are consolidated here so a gateway
// version bump is a single-file change.
const (
	pollPath          = "/v1/query/poll"
	questionnairePath = "/v1/query/questionnaire"
	hasVotedPath      = "/v1/query/has-voted"
	hasClaimedPath    = "/v1/query/has-claimed"
	balancePath       = "/v1/query/balance"

	castVotePath   = "/v1/tx/cast-vote"
	claimPath      = "/v1/tx/claim"
	distributePath = "/v1/tx/distribute"
	closePoolPath  = "/v1/tx/close-pool"
	withdrawPath   = "/v1/tx/withdraw-remainder"
)
