// Package badge keeps the short "hours left" label shown in status bars
// current, and serves it to other processes.
package badge

// Color is the badge background.
const Color = "#5bbad5"

// MessageType identifies a badge update sent by an interactive command.
const MessageType = "updateBadgeFromPopup"

// Message asks the daemon to show a remaining time it did not compute itself.
type Message struct {
	Type             string `json:"type"`
	RemainingSeconds int    `json:"remainingSeconds"`
}
