package chat

import "errors"

var (
	// ErrRoomInitializationFailed means the pair-uniqueness race could not
	// be resolved after a retry: creation hit the duplicate constraint but
	// the winning room is still not visible. Backend inconsistency, not a
	// retryable client condition.
	ErrRoomInitializationFailed = errors.New("room initialization failed")

	// ErrChatInitFailed covers any failure while loading history or
	// setting up subscriptions. The session never reaches a partial Ready
	// state.
	ErrChatInitFailed = errors.New("chat initialization failed")

	// ErrEmptyMessage rejects empty or whitespace-only sends locally,
	// without a round trip.
	ErrEmptyMessage = errors.New("message body is empty")

	// ErrMessageTooLong rejects bodies over the configured length cap.
	ErrMessageTooLong = errors.New("message body is too long")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("chat session is closed")

	// ErrSelfChat rejects opening a conversation with oneself.
	ErrSelfChat = errors.New("cannot open a chat with yourself")
)
