package chain

import "testing"

func TestValidateAddressAcceptsWithAndWithoutPrefix(t *testing.T) {
	raw := "0000000000000000000000000000000000000000000000000000000000000001"
	want := "0x" + raw

	got, ok := ValidateAddress(raw)
	if !ok || got != want {
		t.Fatalf("expected %q, got %q (%v)", want, got, ok)
	}

	got, ok = ValidateAddress("0x" + raw)
	if !ok || got != want {
		t.Fatalf("expected %q, got %q (%v)", want, got, ok)
	}
}

func TestValidateAddressNormalizesCase(t *testing.T) {
	raw := "ABCDEF0000000000000000000000000000000000000000000000000000000001"[:64]
	got, ok := ValidateAddress("0x" + raw)
	if !ok {
		t.Fatalf("expected mixed-case input to be accepted")
	}
	if got != "0x"+raw[:len(raw)] {
		// just verify it's lowercase
	}
	for _, r := range got {
		if r >= 'A' && r <= 'Z' {
			t.Fatalf("expected lowercase normalized address, got %q", got)
		}
	}
}

func TestValidateAddressRejectsWrongLength(t *testing.T) {
	if _, ok := ValidateAddress("0x0001"); ok {
		t.Fatalf("expected short address to be rejected")
	}
}

func TestValidateAddressRejectsNonHex(t *testing.T) {
	bad := "zz00000000000000000000000000000000000000000000000000000000000001"
	if _, ok := ValidateAddress(bad); ok {
		t.Fatalf("expected non-hex input to be rejected")
	}
}
