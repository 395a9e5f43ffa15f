// Package spl parses FDA Structured Product Labeling (HL7 v3) documents
// and extracts the NDC → manufacturer DUNS cross-reference from them.
package spl

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// ParseError indicates a document whose bytes are not well-formed XML.
// The pipeline recovers from it per document; it never aborts a run.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is the read-only in-memory tree of one label document.
// It is discarded as soon as extraction for the document completes.
type Document struct {
	source string
	root   *etree.Element
}

// Source returns the originating file identifier.
func (d *Document) Source() string {
	return d.source
}

// ParseDocument builds the XML tree for one raw document. Truncated or
// malformed markup yields a *ParseError.
func ParseDocument(source string, raw []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	root := tree.Root()
	if root == nil {
		return nil, &ParseError{Source: source, Err: errors.New("document has no root element")}
	}

	return &Document{source: source, root: root}, nil
}
