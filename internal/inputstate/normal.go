package inputstate

// NormalState is navigation/scrolling/mode-entry/quit; it carries no
// draft of its own.
type NormalState struct{}

func (NormalState) Kind() Kind  { return KindNormal }
func (NormalState) isInputState() {}
