package models

// BroadcastType identifies the kind of domain change carried by a
// BroadcastMessage.
type BroadcastType string

const (
	BroadcastEventCreated       BroadcastType = "event_created"
	BroadcastEventUpdated       BroadcastType = "event_updated"
	BroadcastEventDeleted       BroadcastType = "event_deleted"
	BroadcastParticipantChanged BroadcastType = "participant_changed"
	BroadcastGoodieCreated      BroadcastType = "goodie_created"
	BroadcastGoodieUpdated      BroadcastType = "goodie_updated"
	BroadcastGoodieEdited       BroadcastType = "goodie_edited"
	BroadcastGoodieDeleted      BroadcastType = "goodie_deleted"
	BroadcastGoodieCollected    BroadcastType = "goodie_collected"
	BroadcastCommentCreated     BroadcastType = "comment_created"
	BroadcastCommentUpdated     BroadcastType = "comment_updated"
	BroadcastCommentDeleted     BroadcastType = "comment_deleted"
)

// BroadcastMessage is the closed set of domain-change notifications fanned
// out to WebSocket subscribers. Messages are immutable value objects built
// fresh for each mutation; consumers pattern-match on Type.
//
// Exactly the fields relevant to the Type are set:
//   - event_created/event_updated: Event
//   - event_deleted: ID
//   - participant_changed: EventID + Attendees
//   - goodie_created/updated/edited: Goodie
//   - goodie_deleted: ID
//   - goodie_collected: Goodie + UserID + Collected
//   - comment_created/updated: EventID + Comment
//   - comment_deleted: EventID + CommentID
type BroadcastMessage struct {
	Type BroadcastType `json:"type"`

	ID        string             `json:"id,omitempty"`
	Event     *EventProjection   `json:"event,omitempty"`
	EventID   string             `json:"eventId,omitempty"`
	Attendees *int               `json:"attendees,omitempty"`
	Goodie    *GoodieProjection  `json:"goodie,omitempty"`
	UserID    string             `json:"userId,omitempty"`
	Collected *bool              `json:"collected,omitempty"`
	Comment   *CommentProjection `json:"comment,omitempty"`
	CommentID string             `json:"commentId,omitempty"`
}

// NewEventCreated builds an event_created message.
func NewEventCreated(event EventProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastEventCreated, Event: &event}
}

// NewEventUpdated builds an event_updated message.
func NewEventUpdated(event EventProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastEventUpdated, Event: &event}
}

// NewEventDeleted builds an event_deleted message.
func NewEventDeleted(id string) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastEventDeleted, ID: id}
}

// NewParticipantChanged builds a participant_changed message carrying the
// current attendee count for the event.
func NewParticipantChanged(eventID string, attendees int) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastParticipantChanged, EventID: eventID, Attendees: &attendees}
}

// NewGoodieCreated builds a goodie_created message.
func NewGoodieCreated(goodie GoodieProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastGoodieCreated, Goodie: &goodie}
}

// NewGoodieUpdated builds a goodie_updated message. Vote changes are
// broadcast as updates so clients can patch the aggregate in place.
func NewGoodieUpdated(goodie GoodieProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastGoodieUpdated, Goodie: &goodie}
}

// NewGoodieEdited builds a goodie_edited message.
func NewGoodieEdited(goodie GoodieProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastGoodieEdited, Goodie: &goodie}
}

// NewGoodieDeleted builds a goodie_deleted message.
func NewGoodieDeleted(id string) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastGoodieDeleted, ID: id}
}

// NewGoodieCollected builds a goodie_collected message recording whether
// the user now holds the goodie.
func NewGoodieCollected(goodie GoodieProjection, userID string, collected bool) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastGoodieCollected, Goodie: &goodie, UserID: userID, Collected: &collected}
}

// NewCommentCreated builds a comment_created message.
func NewCommentCreated(eventID string, comment CommentProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastCommentCreated, EventID: eventID, Comment: &comment}
}

// NewCommentUpdated builds a comment_updated message.
func NewCommentUpdated(eventID string, comment CommentProjection) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastCommentUpdated, EventID: eventID, Comment: &comment}
}

// NewCommentDeleted builds a comment_deleted message.
func NewCommentDeleted(eventID, commentID string) BroadcastMessage {
	return BroadcastMessage{Type: BroadcastCommentDeleted, EventID: eventID, CommentID: commentID}
}
