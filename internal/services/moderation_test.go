package services

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Nice PIKE!!", "nice pikei"},
		{"  k1lllll   y0u ", "kil you"},
		{"$h00t", "shot"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckComment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		flagged bool
		cat     ModerationCategory
	}{
		{"clean", "Great catch, what lure did you use?", false, ""},
		{"substring is not a word", "Real skill on that cast", false, ""},
		{"obfuscated threat", "I will k!!!ll you", true, CategoryThreat},
		{"phrase threat", "I know where you live", true, CategoryThreat},
		{"abuse", "you are an 1d10t", true, CategoryAbuse},
		{"spam phrase", "CLICK HERE for free money", true, CategorySpam},
		{"too many links", "see http://a.io http://b.io www.c.io", true, CategorySpam},
		{"two links are fine", "see http://a.io and http://b.io", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckComment(tt.content)
			if res.Flagged != tt.flagged {
				t.Fatalf("flagged = %v, want %v (%+v)", res.Flagged, tt.flagged, res)
			}
			if tt.flagged && !hasCategory(res.Categories, tt.cat) {
				t.Errorf("categories %v missing %q", res.Categories, tt.cat)
			}
		})
	}
}

func TestRepeatedLettersInBaseWords(t *testing.T) {
	// "kill" and "kiiill" both clean to "kil".
	ok, words := ContainsConfirmedWord(CleanText("kiiill"), []string{"kill"})
	if !ok || len(words) != 1 || words[0] != "kill" {
		t.Errorf("expected kill to be confirmed, got %v %v", ok, words)
	}
}
