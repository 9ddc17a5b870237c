package puzzle

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tcs := []struct {
		err  Error
		want string
	}{
		{
			Error{Scope: RequestScope, Structure: AttributeStructure,
				Attribute: DecodeAttribute, Condition: GeneralCondition,
				Values: ErrorData{"unexpected EOF"}},
			"Invalid request: JSON decode error: unexpected EOF",
		},
		{
			Error{Scope: SummaryScope, Structure: AttributeValueStructure,
				Attribute: RowsAttribute, Condition: TooSmallCondition,
				Values: ErrorData{0, 1}},
			"Invalid puzzle description: Row count (0): Must be at least 1",
		},
		{
			Error{Scope: RegionScope, Structure: AttributeStructure,
				Attribute: CageAttribute, Condition: OffBoardCondition,
				Values: ErrorData{2, Position{5, 5}}},
			"Problem in region 2: Cage: Cell (5,5) is not a playable position",
		},
		{
			Error{Scope: ConstraintScope, Structure: AttributeValueStructure,
				Attribute: ConstraintTypeAttribute, Condition: UnknownTypeCondition,
				Values: ErrorData{0, "between"}},
			"Problem in constraint of region 0: Constraint type (between): Not a known constraint type",
		},
		{
			Error{Scope: DominoScope, Structure: AttributeValueStructure,
				Attribute: PipsAttribute, Condition: TooLargeCondition,
				Values: ErrorData{0, 7, MaxPips}},
			"Problem in domino 0: Pip value (7): Must be at most 6",
		},
		{
			Error{Scope: InternalScope, Structure: AttributeStructure,
				Attribute: EncodeAttribute, Condition: GeneralCondition,
				Values: ErrorData{"broken pipe"}},
			"Internal logic error: JSON encode error: broken pipe",
		},
		{
			Error{Message: "canned message wins"},
			"canned message wins",
		},
	}
	for i, tc := range tcs {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("case %d: message is %q (expected %q)", i+1, got, tc.want)
		}
	}
}

func TestRangeError(t *testing.T) {
	small := rangeError(SummaryScope, RowsAttribute, -1, 1, 10)
	if small.Condition != TooSmallCondition {
		t.Errorf("below-range condition is %v", small.Condition)
	}
	if !strings.Contains(small.Error(), "at least 1") {
		t.Errorf("below-range message is %q", small.Error())
	}
	large := rangeError(DominoScope, PipsAttribute, 7, 0, MaxPips)
	if large.Condition != TooLargeCondition {
		t.Errorf("above-range condition is %v", large.Condition)
	}
	if !strings.Contains(large.Error(), "at most 6") {
		t.Errorf("above-range message is %q", large.Error())
	}
}

func TestErrorJSON(t *testing.T) {
	err := rangeError(SummaryScope, ColsAttribute, 0, 1, 0)
	err.Message = err.Error()
	bytes, e := json.Marshal(err)
	if e != nil {
		t.Fatalf("failed to marshal Error: %v", e)
	}
	var decoded Error
	if e := json.Unmarshal(bytes, &decoded); e != nil {
		t.Fatalf("failed to unmarshal Error: %v", e)
	}
	if decoded.Scope != SummaryScope || decoded.Attribute != ColsAttribute {
		t.Errorf("round-tripped Error is %+v", decoded)
	}
	if decoded.Message != err.Message {
		t.Errorf("round-tripped message is %q", decoded.Message)
	}
}
