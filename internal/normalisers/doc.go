// Package normalisers turns source documents into cleaned domain pages.
// Each subpackage handles one document format and implements
// driven.DocumentExtractor.
package normalisers
