package bon

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("argument invalid")
	ErrNilProduct        = fmt.Errorf("%w: produsul este obligatoriu", ErrInvalidArgument)
	ErrInvalidQuantity   = fmt.Errorf("%w: cantitatea trebuie să fie pozitivă", ErrInvalidArgument)
	ErrMissingDependency = errors.New("bon: lookup-ul de produse și configurația sunt obligatorii")
)

// LinkageReason classifies why a deposit guarantee step was skipped.
type LinkageReason int

const (
	ReasonSGRDisabled LinkageReason = iota
	ReasonInvalidCodSGR
	ReasonCompanionNotFound
	ReasonHostNotInCart
	ReasonGuaranteeMissing
	ReasonGuaranteeMismatch
)

func (r LinkageReason) String() string {
	switch r {
	case ReasonSGRDisabled:
		return "sgr_disabled"
	case ReasonInvalidCodSGR:
		return "invalid_cod_sgr"
	case ReasonCompanionNotFound:
		return "companion_not_found"
	case ReasonHostNotInCart:
		return "host_not_in_cart"
	case ReasonGuaranteeMissing:
		return "guarantee_missing"
	case ReasonGuaranteeMismatch:
		return "guarantee_mismatch"
	default:
		return "unknown"
	}
}

// LinkageError describes a skipped guarantee insertion or synchronization.
// It is reported through EventLinkageSkipped, never returned to the caller.
type LinkageError struct {
	Reason   LinkageReason
	HostID   int
	CodSGR   string
	Expected int
	// Got is the adjacent line rejected by the identity check, if any.
	Got *Item
	Err error
}

func (e *LinkageError) Error() string {
	msg := fmt.Sprintf("garanție SGR omisă pentru produsul %d (cod %q): %s", e.HostID, e.CodSGR, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LinkageError) Unwrap() error { return e.Err }
