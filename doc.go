// Package cal2am translates dataflow actors into actor machines.
//
// The translation is in package 'core'.  Networks of actors are
// loaded and compiled by 'network', run by 'sim', and drawn and
// checked by 'tools'.  The command-line tool is cmd/amc.
package cal2am
