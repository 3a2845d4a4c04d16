package turn

import "testing"

func TestDecodeErr(t *testing.T) {
	e := newAttrDecodeErr("realm", "bad length")
	if !e.IsPlaceChildren("realm") {
		t.Error("e should be in realm")
	}
	if !e.IsPlaceParent("attribute") {
		t.Error("e should be in attribute")
	}
	if !e.IsPlace(DecodeErrPlace{Parent: "attribute", Children: "realm"}) {
		t.Error("bad place")
	}
	if e.Error() != "BadFormat for attribute/realm: bad length" {
		t.Error("bad error string", e.Error())
	}
}

func TestError(t *testing.T) {
	const e Error = "some error"
	if e.Error() != "some error" {
		t.Error("bad error string")
	}
}
