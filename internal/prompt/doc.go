// Package prompt implements deadline-bounded operator prompting on a shared
// console input stream.
//
// It exposes ConsolePrompter for yes/no questions, line and secret entry, and
// numbered multi-selection menus. All reads flow through one pending read at a
// time, so an answer abandoned at a deadline never blocks or satisfies a later
// question.
package prompt
