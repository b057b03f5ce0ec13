// Package assistant implements the command interpretation and
// reconciliation core of the aether calendar assistant.
//
// Free-form chat text is interpreted in stages: the Extractor delegates to
// a language-model capability and strictly validates the structured intent
// it returns; the Dispatcher maps the intent onto calendar operations,
// resolving loose date/time fragments with ResolveStart and ResolveEnd;
// and the Service exposes the chat entry point plus the four direct CRUD
// entry points, reconciling provider events with locally-owned metadata
// into merged views.
//
// Two invariants run through the whole package. The provider write always
// precedes the metadata write, and a metadata failure after a successful
// provider write is accepted and logged rather than rolled back; the
// provider is the system of record for event existence. And the chat path
// always yields a reply string; raw capability errors never reach the
// user there.
package assistant
