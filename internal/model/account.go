package model

import "github.com/gagliardetto/solana-go"

// AccountKind tags every record held by the account store.
type AccountKind uint8

const (
	KindConfig AccountKind = iota + 1
	KindTreasury
	KindLottery
	KindTicket
	KindTokenAccount
)

func (k AccountKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTreasury:
		return "treasury"
	case KindLottery:
		return "lottery"
	case KindTicket:
		return "ticket"
	case KindTokenAccount:
		return "token_account"
	default:
		return "unknown"
	}
}

// Account is implemented by every record type the store can hold.
// Records are borsh-encoded and must only contain fixed-size fields so that
// their layout never changes after allocation.
type Account interface {
	AccountKind() AccountKind
}

// Config is the deployment-wide singleton.
type Config struct {
	AuthorizedOperator solana.PublicKey
	StableMint         solana.PublicKey
	LotteryCount       uint64
	CreatedAt          int64
}

func (*Config) AccountKind() AccountKind { return KindConfig }

// Treasury accumulates protocol fees and recycled prizes. Its vault is the
// treasury's token account for Mint.
type Treasury struct {
	Mint               solana.PublicKey
	Balance            uint64
	LastWithdrawalTime int64
	TotalFees          uint64
	TotalRecycled      uint64
	TotalWithdrawn     uint64
}

func (*Treasury) AccountKind() AccountKind { return KindTreasury }

// TokenAccount holds a stable-token balance for one owner.
type TokenAccount struct {
	Owner  solana.PublicKey
	Mint   solana.PublicKey
	Amount uint64
}

func (*TokenAccount) AccountKind() AccountKind { return KindTokenAccount }
