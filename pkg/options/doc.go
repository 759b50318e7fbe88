/*
Package options parses the raw, delimited strings accepted by the command line.

Two forms are supported:

	"setext, bullet: *, rule-repetition: 3"   settings (name -> coerced value)
	"gfm; footnote, ./local-plugin"           plugin identifiers (ordered list)

Entries are separated by a comma or semicolon, names and values by a colon. Both
parsers fold into an accumulator so that repeated flags build on each other:
settings are last-write-wins per name, plugin lists append without deduplication.

Setting values are coerced by an ordered Policy into a tagged Value (Bool, Number
or Text). Keys are normalised to camelCase.
*/
package options
