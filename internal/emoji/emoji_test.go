package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	SetEmojiDisabled(false)
	if got := GetEmoji("malignant"); got != "🔴" {
		t.Errorf("Expected emoji, got %q", got)
	}

	SetEmojiDisabled(true)
	defer SetEmojiDisabled(false)
	if !IsEmojiDisabled() {
		t.Error("Expected emoji to be disabled")
	}
	if got := GetEmoji("benign"); got != "[BEN]" {
		t.Errorf("Expected fallback, got %q", got)
	}
	if got := GetEmoji("no-such-key"); got != "[?]" {
		t.Errorf("Expected unknown marker, got %q", got)
	}
}
