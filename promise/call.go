package promise

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Stage names a step of a relay operation.
type Stage string

// Stages of relay operations.
const (
	StageExistenceCheck    Stage = "ExistenceCheck"
	StageAllocationRequest Stage = "AllocationRequest"
	StageTransfer          Stage = "Transfer"
	StageBalanceCheck      Stage = "BalanceCheck"
	StageRelay             Stage = "Relay"
	StageRefund            Stage = "Refund"
	StageQuery             Stage = "Query"
)

// Kind is a kind of remote action.
type Kind uint8

const (
	// FunctionCall invokes a method of the target.
	FunctionCall Kind = iota
	// Payment sends Deposit to the target account, Method is empty.
	Payment
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case FunctionCall:
		return "call"
	case Payment:
		return "payment"
	default:
		return "unknown"
	}
}

// Call is a single remote action.
type Call struct {
	Stage  Stage
	Kind   Kind
	Target util.Uint160
	Method string
	Args   []any
	// Attached payment.
	Deposit uint256.Int
	// Execution budget of the remote party.
	Gas uint64
}

// Result is an outcome of a remote action or of a whole chain.
type Result struct {
	Value any
	Err   error
}

// Pair is a Value of the Join result: results of both sides in the order
// they were passed to Join.
type Pair [2]Result
