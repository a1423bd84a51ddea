// Package initbot provides a CLI chatbot for Swiss federal popular initiatives.
// It scrapes the initiative pages of the Federal Chancellery, summarizes them
// with an LLM, caches the results, and answers free-text questions by fuzzy
// matching them against the cached summaries.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package initbot
