package domain

// QueuedUserMessage is a proof object witnessing that a non-empty user
// message plus a valid model/provider/credential triple is ready to
// dispatch. The only producer is the input layer's Insert-mode submit
// path; the only consumer is the streaming pipeline. There is no public
// constructor outside this package's NewQueuedUserMessage so a caller
// cannot fabricate one without going through validation.
type QueuedUserMessage struct {
	text  NonEmptyText
	model ModelName
	key   ApiKey
}

// NewQueuedUserMessage is the sole constructor, called by the input
// layer only after confirming (a) draft is non-empty after trim and
// (b) a credential for the active provider resolves. Both checks happen
// at the call site; this constructor just assembles the witnessed value.
func NewQueuedUserMessage(text NonEmptyText, model ModelName, key ApiKey) QueuedUserMessage {
	return QueuedUserMessage{text: text, model: model, key: key}
}

// Text returns the validated message body.
func (q QueuedUserMessage) Text() NonEmptyText { return q.text }

// Model returns the model the message should be sent with.
func (q QueuedUserMessage) Model() ModelName { return q.model }

// Credential returns the resolved credential for the active provider.
func (q QueuedUserMessage) Credential() ApiKey { return q.key }
