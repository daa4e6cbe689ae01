package rox

import (
	"math"
	"testing"
)

func TestValueDisplay(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{NewNil(), "nil"},
		{NewBool(true), "true"},
		{NewBool(false), "false"},
		{NewNumber(3), "3"},
		{NewNumber(2.5), "2.5"},
		{NewNumber(-0.125), "-0.125"},
		{NewNumber(1e21), "1000000000000000000000"},
		{NewNumber(math.Inf(1)), "inf"},
		{NewString("plain"), "plain"},
		{NewBuiltin("clock", 0, builtinClock), "<native fn clock>"},
	}
	for _, tc := range cases {
		if got := tc.value.String(); got != tc.want {
			t.Fatalf("%v: got %q want %q", tc.value.Kind(), got, tc.want)
		}
	}
}

func TestValueTruthiness(t *testing.T) {
	falsey := []Value{NewNil(), NewBool(false)}
	truthy := []Value{NewBool(true), NewNumber(0), NewString(""), NewString("x")}
	for _, v := range falsey {
		if v.Truthy() {
			t.Fatalf("%v should be falsey", v)
		}
	}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Fatalf("%q should be truthy", v.String())
		}
	}
}

func TestValueEquality(t *testing.T) {
	if !NewNumber(1).Equal(NewNumber(1)) || NewNumber(1).Equal(NewString("1")) {
		t.Fatalf("number equality")
	}
	if !NewNil().Equal(NewNil()) || NewNil().Equal(NewBool(false)) {
		t.Fatalf("nil equality")
	}
	if !NewString("a").Equal(NewString("a")) {
		t.Fatalf("string equality")
	}
	if NewNumber(math.NaN()).Equal(NewNumber(math.NaN())) {
		t.Fatalf("NaN must not equal itself")
	}
	c1 := DeclareClass("Same", nil, nil)
	c2 := DeclareClass("Same", nil, nil)
	if NewClass(c1).Equal(NewClass(c2)) || !NewClass(c1).Equal(NewClass(c1)) {
		t.Fatalf("classes compare by identity")
	}
}
