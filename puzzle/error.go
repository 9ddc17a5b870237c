package puzzle

import (
	"fmt"
)

/*

Errors

*/

// An Error describes a problem with a puzzle description or a
// requested operation.  It can produce an error message in
// English, but its main function is to support structured error
// reporting to clients: it says "this thing failed to meet this
// condition" and carries supplemental details about the thing
// and the condition.
//
// Errors are reserved for malformed descriptions and request
// handling problems.  Search failures ("no solution") are plain
// boolean outcomes and never represented as Errors.
type Error struct {
	Scope     ErrorScope     `json:"scope"`
	Structure ErrorStructure `json:"structure,omitempty"`
	Condition ErrorCondition `json:"condition,omitempty"`
	Attribute ErrorAttribute `json:"attribute,omitempty"`
	Values    ErrorData      `json:"values,omitempty"`
	Message   string         `json:"message,omitempty"` // custom message
}

// An ErrorScope explains what type of thing the error is
// referring to.
type ErrorScope int

// Constants for the various error scopes.
const (
	UnknownScope ErrorScope = iota
	RequestScope
	SummaryScope
	RegionScope
	ConstraintScope
	DominoScope
	InternalScope
	MaxScope
)

// The ErrorStructure denotes whether the problem is in the
// overall Scope, an Attribute of the Scope, or the value of an
// Attribute of the Scope.
type ErrorStructure int

// Constants for the various structure codes.
const (
	UnknownStructure ErrorStructure = iota
	ScopeStructure
	AttributeStructure
	AttributeValueStructure
	MaxStructure
)

// The ErrorCondition is the predicate that the
// scope/attribute/value failed to satisfy.
type ErrorCondition int

// Constants for the various error conditions.
const (
	UnknownCondition ErrorCondition = iota
	GeneralCondition
	TooLargeCondition
	TooSmallCondition
	MissingValueCondition
	UnexpectedValueCondition
	UnknownTypeCondition
	TooFewPositionsCondition
	DuplicatePositionCondition
	OffBoardCondition
	NoPositionsCondition
	MaxCondition
)

// An ErrorAttribute names the attribute that has a problem.
type ErrorAttribute int

// Constants for the various attribute codes.
const (
	UnknownAttribute ErrorAttribute = iota
	DecodeAttribute
	EncodeAttribute
	URLAttribute
	LocationAttribute
	RowsAttribute
	ColsAttribute
	PositionAttribute
	ConstraintTypeAttribute
	BoundAttribute
	PipsAttribute
	DominoAttribute
	CageAttribute
	MaxAttribute
)

// The ErrorData provides details about the thing that failed to
// meet the predicate (such as the value of an attribute) as well
// as the predicate itself (such as the allowed range).
//
// Every item in the slice is required to be JSON-serializable,
// so it can be returned to web clients.  There is no good way to
// have the compiler check that, so implementors just have to do
// the right thing.
type ErrorData []interface{}

// Return an error string from an Error.  If the Error has a
// pre-canned message, this will use it, otherwise it will
// produce an appropriate (English, non-localized) message.
func (e Error) Error() string {
	es := e.Message
	if len(es) > 0 {
		return es
	}
	values := e.Values
	nextVal := func() interface{} {
		if len(values) == 0 {
			return "<unknown>"
		}
		val := values[0]
		values = values[1:]
		return val
	}
	switch e.Scope {
	case RequestScope:
		es = "Invalid request: "
	case SummaryScope:
		es = "Invalid puzzle description: "
	case RegionScope:
		es = fmt.Sprintf("Problem in region %v: ", nextVal())
	case ConstraintScope:
		es = fmt.Sprintf("Problem in constraint of region %v: ", nextVal())
	case DominoScope:
		es = fmt.Sprintf("Problem in domino %v: ", nextVal())
	case InternalScope:
		es = "Internal logic error: "
	default:
		es = "Unknown error: "
	}
	if e.Structure == AttributeStructure || e.Structure == AttributeValueStructure {
		switch e.Attribute {
		case DecodeAttribute:
			es += "JSON decode error"
		case EncodeAttribute:
			es += "JSON encode error"
		case URLAttribute:
			es += "Resource path"
		case LocationAttribute:
			es += fmt.Sprintf("In puzzle.%v", nextVal())
		case RowsAttribute:
			es += "Row count"
		case ColsAttribute:
			es += "Column count"
		case PositionAttribute:
			es += "Position"
		case ConstraintTypeAttribute:
			es += "Constraint type"
		case BoundAttribute:
			es += "Constraint value"
		case PipsAttribute:
			es += "Pip value"
		case DominoAttribute:
			es += "Domino"
		case CageAttribute:
			es += "Cage"
		default:
			es += "<Unknown attribute>"
		}
		if e.Structure == AttributeValueStructure {
			es += " (" + fmt.Sprint(nextVal()) + ")"
		}
		es += ": "
	}
	switch e.Condition {
	case GeneralCondition:
		es += fmt.Sprint(nextVal())
	case TooLargeCondition:
		es += fmt.Sprintf("Must be at most %v", nextVal())
	case TooSmallCondition:
		es += fmt.Sprintf("Must be at least %v", nextVal())
	case MissingValueCondition:
		es += "Required value was missing"
	case UnexpectedValueCondition:
		es += fmt.Sprintf("Must not carry a value (got %v)", nextVal())
	case UnknownTypeCondition:
		es += "Not a known constraint type"
	case TooFewPositionsCondition:
		es += fmt.Sprintf("Must apply to at least %v cells", nextVal())
	case DuplicatePositionCondition:
		es += fmt.Sprintf("Cell %v appears more than once", nextVal())
	case OffBoardCondition:
		es += fmt.Sprintf("Cell %v is not a playable position", nextVal())
	case NoPositionsCondition:
		es += "No playable positions given"
	default:
		es += fmt.Sprintf("Supplemental data is %v", values)
	}
	return es
}

// rangeError returns an Error that describes an out-of-range
// attribute value.
func rangeError(scope ErrorScope, attr ErrorAttribute, val, min, max int) Error {
	err := Error{
		Scope:     scope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: TooLargeCondition,
		Values:    ErrorData{val, max},
	}
	if val < min {
		err.Condition = TooSmallCondition
		err.Values[1] = min
	}
	return err
}
