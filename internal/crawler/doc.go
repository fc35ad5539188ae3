// Package crawler turns a directory of HTML files into a link graph.
//
// Every regular file whose name ends in ".html" is a page, identified by its
// file name. The anchors of each page are parsed with golang.org/x/net/html
// and resolved against the corpus: links to files that are not pages of the
// corpus, links to the page itself and duplicate links are dropped.
//
// # Usage
//
//	g, err := crawler.LoadCorpus(ctx, "corpus0", crawler.WithConcurrency(4))
//
// Files are read and parsed concurrently. The resulting graph does not
// depend on the order in which files finish.
package crawler
