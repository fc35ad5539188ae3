package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Digest returns the hex encoded SHA3-256 fingerprint of g.
//
// The fingerprint covers the canonical adjacency listing: one line per page
// in lexicographic order, the page id followed by its sorted link targets,
// separated by tabs. Page contents other than links do not matter, so two
// corpora with the same link structure share a digest.
func Digest(g *LinkGraph) string {
	var sb strings.Builder
	for _, page := range g.Pages() {
		sb.WriteString(string(page))
		for _, target := range g.Links(page) {
			sb.WriteByte('\t')
			sb.WriteString(string(target))
		}
		sb.WriteByte('\n')
	}

	hash := sha3.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}
