package controller

// DefaultTipAmount - pre-filled amount for a fresh visitor session.
const DefaultTipAmount = "0.01"

// intent field limits
const (
	maxNameLength    = 20
	maxMessageLength = 150
)

// Intent - the visitor's tip draft. Amount is a decimal string the way the
// input field produces it; it is validated and encoded to smallest units on
// submission.
type Intent struct {
	Amount  string
	Name    string
	Message string
}

// NewIntent -
func NewIntent() Intent {
	return Intent{Amount: DefaultTipAmount}
}

func clampRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
