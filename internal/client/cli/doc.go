// Package cli is the interactive premiumkeeper client for brokers and admins.
//
// Brokers pick a company, mark plates as checked, type premiums and submit
// them; the checked state and premiums live in the local override store.
// Admins additionally list the server ledger, download the spreadsheet
// export, and import or dump override snapshots.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
