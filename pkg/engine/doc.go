/*
Package engine is the transform engine driven by the pipeline.

A Processor is configured by attaching plugins in order with Use, then turns
Markdown source into a Document with Parse and back into text with Stringify.
Parsing is done by goldmark; plugins contribute goldmark extensions, settings
defaults, frontmatter handling or output filters.

Stringify produces Markdown by default, formatted according to the settings
(bullet, setext, fences, ...), or HTML when the "html" setting is true.
Document.Tree exposes the parsed structure in a serialisable form.
*/
package engine
