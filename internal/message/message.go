// Package message holds the text templates sent to players by the command
// system and the features built on it.
package message

import "fmt"

// Templates are printf-style formats; fill them with Format.
const (
	CommandInsufficientRights = "Sorry, this command is only available to %s."
	CommandUnknownPlayer      = "Sorry, no player could be found for \"%s\"."
	CommandUsage              = "Usage: %s"
	CommandUnknown            = "Sorry, the command /%s does not exist. Type /help for a list of commands."

	HelpHeader      = "Commands available to you:"
	PlayersHeader   = "Connected players (%d):"
	PlayersNone     = "There are no players connected."
	StatsLine       = "%s (ID %d) has the level %s."
	PrivateSent     = "[PM to %s] %s"
	PrivateReceived = "[PM from %s] %s"
	PrivateSelf     = "You can't send a private message to yourself."
	KickSelf        = "You can't kick yourself."
	KickHigher      = "You can't kick %s, they have a higher level than you."
	KickNotify      = "You have been kicked by %s: %s"
	KickAnnounce    = "%s has been kicked by %s (%s)."
	KickNoReason    = "no reason given"
	LevelUnchanged  = "%s's level is already %s."
	LevelChanged    = "%s's level is now %s."
	LevelNotify     = "%s has changed your level to %s."
	Announcement    = "* Announcement: %s"
	Goodbye         = "Goodbye."
	Welcome         = "Welcome, %s. Type /help for a list of commands."
	Chat            = "<%s> %s"
)

// Format fills template with args.
func Format(template string, args ...interface{}) string {
	return fmt.Sprintf(template, args...)
}
