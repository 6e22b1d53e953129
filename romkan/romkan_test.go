package romkan

import "testing"

func TestToHiragana(t *testing.T) {
	c := NewConverter(nil)
	tests := []struct {
		in   string
		want string
	}{
		{"a", "あ"},
		{"ba", "ば"},
		{"hi", "ひ"},
		{"wahaha", "わはは"},
		{"akasatana", "あかさたな"},
		{"thi", "てぃ"},
		{"better", "べってr"},
		{"[", "「"},
		{"]", "」"},
		{"wo", "を"},
		{"du", "づ"},
		{"we", "うぇ"},
		{"di", "ぢ"},
		{"fu", "ふ"},
		{"ti", "ち"},
		{"wi", "うぃ"},
		{"z,", "‥"},
		{"z.", "…"},
		{"z/", "・"},
		{"z[", "『"},
		{"z]", "』"},
		{"zh", "←"},
		{"sorenawww", "それなwww"},
		{"kyou", "きょう"},
		{"nippon", "にっぽん"},
		{"nihon", "にほん"},
		{"sonnna", "そんな"},
		{"watasinonamaehanakanodesu.", "わたしのなまえはなかのです。"},
		{"tanosiijikan", "たのしいじかん"},
		{"KYOU", "きょう"},
	}
	for _, tt := range tests {
		if got := c.ToHiragana(tt.in); got != tt.want {
			t.Errorf("ToHiragana(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToHiraganaIdempotentOnHiragana(t *testing.T) {
	c := NewConverter(nil)
	for _, s := range []string{"きょう", "にっぽん", "わたし"} {
		if got := c.ToHiragana(s); got != s {
			t.Errorf("ToHiragana(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestRemoveLastChar(t *testing.T) {
	c := NewConverter(nil)
	tests := []struct {
		in   string
		want string
	}{
		{"aka", "a"},
		{"sona", "so"},
		{"son", "so"},
		{"sonn", "so"},
		{"sonnna", "sonn"},
		{"sozh", "so"},
	}
	for _, tt := range tests {
		if got := c.RemoveLastChar(tt.in); got != tt.want {
			t.Errorf("RemoveLastChar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAdditionalEntriesWin(t *testing.T) {
	c := NewConverter(map[string]string{"wi": "ゐ"})
	if got := c.ToHiragana("wi"); got != "ゐ" {
		t.Errorf("ToHiragana(wi) = %q, want ゐ", got)
	}
}
