// Package genai provides the language-model capability consumed by the
// assistant core.
//
// The Generator interface abstracts text generation. Gemini is the live
// implementation backed by the Google Generative Language API; Scripted is
// an in-memory fixture producing keyword-driven intent JSON for development
// mode and tests. The implementation is chosen once at process wiring time.
//
// Model output carries no structural guarantee; the assistant core validates
// everything it receives from a Generator.
package genai
