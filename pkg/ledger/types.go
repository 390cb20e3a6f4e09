package ledger

// Status is a poll reward pool's lifecycle state as recorded on the ledger.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusClosed   Status = "CLOSED"
	StatusClaiming Status = "CLAIMING"
)

// Mode is a poll's reward distribution mode. It is UNSET while the poll is
// active and fixed exactly once when the creator closes the pool.
type Mode string

const (
	ModeUnset      Mode = "UNSET"
	ModeManualPull Mode = "MANUAL_PULL"
	ModeManualPush Mode = "MANUAL_PUSH"
)

// Poll is the ledger's record of a single poll and its reward pool.
// RewardPool is the net amount (after platform fee) in the smallest token
// unit, and only ever decreases as claims and pushes are paid out.
// RewardPoolAtClose is the net pool snapshotted at the ACTIVE -> CLOSED
// transition; it is the stable basis for equal-split shares while RewardPool
// drains.
type Poll struct {
	ID                 string            `json:"id"`
	Creator            string            `json:"creator"`
	Options            []string          `json:"options"`
	VoteCounts         []uint64          `json:"voteCounts"`
	TotalVotes         uint64            `json:"totalVotes"`
	Token              string            `json:"token"`
	RewardPool         uint64            `json:"rewardPool"`
	RewardPoolAtClose  uint64            `json:"rewardPoolAtClose,omitempty"`
	FixedRewardPerVote uint64            `json:"fixedRewardPerVote,omitempty"`
	MaxVoters          uint64            `json:"maxVoters,omitempty"`
	Mode               Mode              `json:"distributionMode"`
	Status             Status            `json:"status"`
	RewardsDistributed bool              `json:"rewardsDistributed"`
	Voters             []string          `json:"voters"`
	Claimants          []string          `json:"claimants"`
	VoterChoices       map[string]uint32 `json:"voterChoices,omitempty"`
}

// HasVoter reports whether participant appears in the poll's voter list.
func (p *Poll) HasVoter(participant string) bool {
	for _, v := range p.Voters {
		if v == participant {
			return true
		}
	}
	return false
}

// HasClaimant reports whether participant already claimed from this pool.
func (p *Poll) HasClaimant(participant string) bool {
	for _, c := range p.Claimants {
		if c == participant {
			return true
		}
	}
	return false
}

// RewardPolicy selects how a questionnaire rewards participants.
type RewardPolicy string

const (
	PolicyPerPoll    RewardPolicy = "PER_POLL"
	PolicySharedPool RewardPolicy = "SHARED_POOL"
)

// RewardMode selects how a shared pool is divided among completers.
type RewardMode string

const (
	RewardEqualSplit RewardMode = "EQUAL_SPLIT"
	RewardFixed      RewardMode = "FIXED"
)

// QuestionnaireStatus is a questionnaire's lifecycle state.
type QuestionnaireStatus string

const (
	QuestionnaireDraft     QuestionnaireStatus = "DRAFT"
	QuestionnaireActive    QuestionnaireStatus = "ACTIVE"
	QuestionnaireEnded     QuestionnaireStatus = "ENDED"
	QuestionnaireClaimable QuestionnaireStatus = "CLAIMABLE"
	QuestionnaireArchived  QuestionnaireStatus = "ARCHIVED"
)

// Questionnaire groups an ordered set of member polls into one completion
// unit. Under SHARED_POOL, SharedFunding is the total net amount funded and
// rewards are payable only to participants who voted on every member poll.
type Questionnaire struct {
	ID            string              `json:"id"`
	Creator       string              `json:"creator"`
	PollIDs       []string            `json:"pollIds"`
	Policy        RewardPolicy        `json:"rewardPolicy"`
	SharedFunding uint64              `json:"sharedFunding,omitempty"`
	RewardMode    RewardMode          `json:"rewardMode,omitempty"`
	FixedAmount   uint64              `json:"fixedAmount,omitempty"`
	MaxCompleters uint64              `json:"maxCompleters,omitempty"`
	Status        QuestionnaireStatus `json:"status"`
}
