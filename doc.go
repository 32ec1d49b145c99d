// Package marktree compiles Markdown into pluggable output.
//
// Source text is lexed into a flat stream of block tokens in which
// containers (block quotes, lists, list items) are framed by balanced start
// and end tokens. The parser walks that stream with a stack and calls one
// Renderer method per block or span, handing already rendered children to
// the enclosing call. Inline text is compiled on the fly by the inline
// lexer.
//
// Four renderers ship with the package:
//   - HTMLRenderer produces HTML markup
//   - TreeRenderer produces element nodes, convertible to x/net/html nodes
//   - TextRenderer produces plain text
//   - ANSIRenderer produces themed terminal text wrapped to a width
//
// Grammar profiles (normal, pedantic, GFM, GFM with tables, GFM with
// breaks) are selected from Options.
//
// Example:
//
//	out, err := marktree.HTML("# Hello\n\nMarkdown *in*, HTML out.\n")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(out)
//
// Terminal output keeps the request style:
//
//	err := marktree.Render(marktree.RenderRequest{
//		Reader: os.Stdin,
//		Writer: os.Stdout,
//		Width:  80,
//		Theme:  marktree.DefaultTheme(),
//	})
//
// Code blocks can be highlighted synchronously with WithHighlight, or
// concurrently with WithAsyncHighlight and ParseAsync.
package marktree
