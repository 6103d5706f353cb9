package core

// ContractType represents a venue futures contract type.
type ContractType int

// Contract type constants mirror the venue contract vocabulary.
const (
	// ContractPerpetual is a perpetual contract without delivery.
	ContractPerpetual ContractType = iota
	// ContractCurrentMonth delivers at the end of the current month.
	ContractCurrentMonth
	// ContractNextMonth delivers at the end of the next month.
	ContractNextMonth
	// ContractCurrentQuarter delivers at the end of the current quarter.
	ContractCurrentQuarter
	// ContractNextQuarter delivers at the end of the next quarter.
	ContractNextQuarter
	// ContractPerpetualDelivering is a perpetual contract being migrated to
	// delivery.
	ContractPerpetualDelivering
)

var contractTypeNames = [...]string{
	"PERPETUAL",
	"CURRENT_MONTH",
	"NEXT_MONTH",
	"CURRENT_QUARTER",
	"NEXT_QUARTER",
	"PERPETUAL_DELIVERING",
}

// String returns the venue string for the contract type.
func (t ContractType) String() string {
	return contractTypeNames[t]
}

// IsPerpetual returns true for perpetual contracts.
func (t ContractType) IsPerpetual() bool {
	return t == ContractPerpetual
}

// IsDelivery returns true for contracts with a delivery date.
func (t ContractType) IsDelivery() bool {
	switch t {
	case ContractCurrentMonth, ContractNextMonth, ContractCurrentQuarter,
		ContractNextQuarter, ContractPerpetualDelivering:
		return true
	}
	return false
}

// ParseContractType maps a venue contract type string to a ContractType.
// Unknown values fail with a DecodingError.
func ParseContractType(s string) (ContractType, error) {
	for i, name := range contractTypeNames {
		if name == s {
			return ContractType(i), nil
		}
	}
	return 0, NewDecodingError("contractType", "unknown contract type: "+s)
}
