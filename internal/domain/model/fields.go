package model

// Alias tables for the fields the listener reads. Platform payloads name the
// same concept differently across kinds and client versions.
var (
	idPaths = []string{ //nolint:gochecknoglobals // alias table
		"id", "msg_id", "msgId", "message_id", "messageId",
		"event_id", "eventId", "correlation_id", "correlationId",
		"common.msg_id", "common.msgId",
	}
	senderPaths = []string{ //nolint:gochecknoglobals // alias table
		"user.unique_id", "user.uniqueId", "user.user_id", "user.userId", "user.id",
		"user.nickname", "unique_id", "uniqueId", "user_id", "userId",
		"sender", "user", "nickname",
	}
	textPaths = []string{ //nolint:gochecknoglobals // alias table
		"comment", "text", "content", "message",
	}
	timestampPaths = []string{ //nolint:gochecknoglobals // alias table
		"timestamp", "ts", "create_time", "createTime",
		"common.create_time", "common.createTime",
	}
	giftNamePaths = []string{ //nolint:gochecknoglobals // alias table
		"gift.name", "gift_name", "giftName", "gift.gift_name", "name",
	}
	recipientPaths = []string{ //nolint:gochecknoglobals // alias table
		"to_user.nickname", "to_user.unique_id", "to_user.uniqueId",
		"toUser.nickname", "toUser.uniqueId",
		"receiver.nickname", "receiver.unique_id", "receiver.uniqueId",
		"recipient", "receiver", "to_user", "to_user_name", "receiver_name",
	}
	repeatPaths = []string{ //nolint:gochecknoglobals // alias table
		"repeat_count", "repeatCount", "gift.repeat_count", "gift.repeatCount",
		"combo_count", "comboCount", "count",
	}
	unitValuePaths = []string{ //nolint:gochecknoglobals // alias table
		"gift.diamond_count", "gift.diamondCount", "diamond_count", "diamondCount",
		"gift.value", "value", "coins",
	}
	descriptionPaths = []string{ //nolint:gochecknoglobals // alias table
		"description", "desc", "action_description", "actionDescription",
		"action", "method", "content", "message", "state", "status",
	}
	statusPaths = []string{ //nolint:gochecknoglobals // alias table
		"status", "battle_status", "battleStatus", "action", "state",
	}
)

// ID returns the explicit event identifier, if any.
func (e Event) ID() string { return e.Payload.String(idPaths...) }

// Sender returns the identity of the user who produced the event.
func (e Event) Sender() string { return e.Payload.String(senderPaths...) }

// Text returns comment text, untrimmed of inner whitespace.
func (e Event) Text() string { return e.Payload.String(textPaths...) }

// Timestamp returns the platform timestamp as delivered.
func (e Event) Timestamp() string { return e.Payload.String(timestampPaths...) }

// GiftName returns the virtual item name.
func (e Event) GiftName() string { return e.Payload.String(giftNamePaths...) }

// Recipient returns the gift recipient's name or handle.
func (e Event) Recipient() string { return e.Payload.String(recipientPaths...) }

// RepeatCount returns the gift repeat count when present.
func (e Event) RepeatCount() (int64, bool) { return e.Payload.Int(repeatPaths...) }

// UnitValue returns the per-item monetary value when present.
func (e Event) UnitValue() (int64, bool) { return e.Payload.Int(unitValuePaths...) }

// Description returns the human-readable action text of link-state and control events.
func (e Event) Description() string { return e.Payload.String(descriptionPaths...) }

// Status returns the lifecycle status of a battle notice.
func (e Event) Status() string { return e.Payload.String(statusPaths...) }
