package extractor

// Sender is the inferred author of a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderUnknown   Sender = "unknown"
)

// MessageKind mirrors the sender as a persisted message type label.
type MessageKind string

const (
	KindUserMessage      MessageKind = "user_message"
	KindAssistantMessage MessageKind = "assistant_message"
	KindUnclassified     MessageKind = "unclassified"
)

// Kind returns the message type label for a sender.
func (s Sender) Kind() MessageKind {
	switch s {
	case SenderUser:
		return KindUserMessage
	case SenderAssistant:
		return KindAssistantMessage
	default:
		return KindUnclassified
	}
}

// SenderHint is a structural classification hint carried on a fragment,
// set when the fragment came from a container type whose author is known
// (e.g. a <user-query> or <model-response> element).
type SenderHint string

const (
	HintNone          SenderHint = ""
	HintUserQuery     SenderHint = "user-query"
	HintModelResponse SenderHint = "model-response"
)

// RawFragment is one DOM sub-tree hypothesized to represent a single
// message. Fragments are transient: produced by a selector strategy,
// consumed immediately by the classifier and normalizer.
type RawFragment struct {
	ContainerID   string     // id attribute of the originating container, if any
	Hint          SenderHint // structural hint from the container type
	ClassAttr     string     // class attribute of the fragment node, for lexical hints
	ContentHTML   string     // inner markup of the content sub-node
	TimestampHTML string     // markup of the nearest timestamp sub-node, if any
}

// Message is one classified, normalized conversation message.
// Immutable once built; ordering is document order of the snapshot.
type Message struct {
	ID        string      `json:"id"`
	Sender    Sender      `json:"sender"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	Kind      MessageKind `json:"type"`
}

// Conversation is an ordered extraction of one chat page.
// MessageCount always equals len(Messages).
type Conversation struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	ExtractedAt  string    `json:"extracted_at"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}
