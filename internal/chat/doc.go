// Package chat is the boundary to the chat platform.
//
// Sender is the delivery interface the notifier fans out through. Discord
// implements it on top of discordgo and also feeds incoming messages to a
// CommandHandler, which serves the subscription commands:
//
//	!track <symbol>     subscribe this channel to a symbol
//	!untrack <symbol>   unsubscribe
//	!liststocks         list this channel's symbols
//	!quote <symbol>     fetch a quote now
//	!help               show usage
package chat
