package cpf

import "testing"

func TestValid(t *testing.T) {
	valid := []string{"52998224725", "529.982.247-25", "11144477735", "111.444.777-35"}
	for _, v := range valid {
		if !Valid(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}

	invalid := []string{"", "123", "52998224724", "11111111111", "000.000.000-00", "5299822472"}
	for _, v := range invalid {
		if Valid(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("529.982.247-25"); got != "52998224725" {
		t.Fatalf("unexpected normalized value %q", got)
	}
}
