// Package model defines the format-agnostic document model produced by the
// DOCX, XLSX, and PPTX parsers and consumed by the renderers.
//
// A Document is built by a single parse and is immutable afterward. Renderers
// and accessors treat it as read-only, so a Document may be shared across
// goroutines once construction is complete.
package model
