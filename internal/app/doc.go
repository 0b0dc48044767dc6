// Package app is the scantag application object: it owns the device
// session, the row editor and the output path, and turns each user command
// into a Notice for the front end to show.
package app
