package telegram

// Client sends short operational notifications to a chat. It decouples the
// application layer from the concrete bot library; a nil client disables
// notifications entirely.
type Client interface {
	Notify(chatID int64, text string) error
}
