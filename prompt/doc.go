// Package prompt holds the advisor's prompt texts and assembles the user
// prompt sent with each chat completion.
package prompt
