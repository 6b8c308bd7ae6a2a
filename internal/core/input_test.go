package core

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Action
		wantErr  bool
	}{
		{name: "canonical name", input: "Down+Right", expected: RightDown},
		{name: "engine alias", input: "Up+Left", expected: LeftUp},
		{name: "case insensitive", input: "low punch", expected: LowPunch},
		{name: "numeric index", input: "17", expected: HighPunchHighKick},
		{name: "short kick alias", input: "Medium", expected: MediumKick},
		{name: "pair name", input: "Low Punch+Low Kick", expected: LowPunchLowKick},
		{name: "meta index rejected", input: "18", wantErr: true},
		{name: "negative index", input: "-1", wantErr: true},
		{name: "unknown name", input: "Hadouken", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAction(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseAction(%q) expected error, got %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction(%q) failed: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("ParseAction(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestActionIndicesMatchEngine(t *testing.T) {
	// The engine protocol addresses actions by index.
	if LowPunch != 9 || HighPunchHighKick != 17 || SuperArt != 18 || Combo != 19 {
		t.Fatalf("action indices drifted: LP=%d HPHK=%d SA=%d Combo=%d",
			LowPunch, HighPunchHighKick, SuperArt, Combo)
	}
	if SuperArt.IsInput() || Combo.IsInput() {
		t.Error("meta actions must not be input symbols")
	}
	if !NoMove.IsInput() || !HighPunchHighKick.IsInput() {
		t.Error("base actions must be input symbols")
	}
}

func TestActionGlyph(t *testing.T) {
	if g := LowPunch.Glyph(false); g != "J" {
		t.Errorf("keyboard glyph = %q, expected J", g)
	}
	if g := HighPunch.Glyph(true); g != "RB" {
		t.Errorf("gamepad glyph = %q, expected RB", g)
	}
	if g := Action(99).Glyph(false); g != "?" {
		t.Errorf("unknown glyph = %q, expected ?", g)
	}
	if s := Action(99).String(); s != "Unknown" {
		t.Errorf("unknown name = %q", s)
	}
}

func TestFacingRoundTrip(t *testing.T) {
	for _, f := range []Facing{FacingLeft, FacingRight} {
		b, _ := f.MarshalText()
		var back Facing
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", b, err)
		}
		if back != f {
			t.Errorf("round trip %v -> %q -> %v", f, b, back)
		}
	}
	if FacingLeft.Flip() != FacingRight {
		t.Error("Flip(left) should be right")
	}
	if _, err := ParseFacing("up"); err == nil {
		t.Error("ParseFacing(up) should fail")
	}
}
