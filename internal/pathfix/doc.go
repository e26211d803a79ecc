// Package pathfix rewrites a malformed relative path prefix in generated HTML
// documentation.
//
// The documentation generator leaves links such as
//
//	<a href="../../../_book/docs/page.html">
//
// in pages under _book/docs. The Corrector walks the documentation tree, and for
// every file whose name matches the pattern it reads the whole file, replaces
// every occurrence of the bad prefix with the good one and writes the result
// back in place:
//
//	<a href="../../docs/page.html">
//
// Files are processed concurrently and independently. The first discovery,
// read or write error cancels the remaining work and is returned; files
// already written keep their corrected content.
package pathfix
