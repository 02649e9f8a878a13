// Package cli implements the interactive gophauth command-line client.
//
// The REPL reads one command per line and dispatches to App methods that
// prompt for their own input:
//
//	register   create an account (username, email, password)
//	verify     confirm an email address with the mailed token
//	available  check whether a username is free
//	login      open a session
//	me         show the current account
//	renew      refresh the session and CSRF tokens
//	passwd     change the password
//	delete     delete the account
//	logout     close the session
//	exit|quit  leave the program
//
// Passwords are read without echo via golang.org/x/term.
package cli
