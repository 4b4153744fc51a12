// Package transcript reads the courses a student has completed from an
// uploaded transcript.
//
// Text is pulled from the document by a TextExtractor, the completion service
// lists the CSE course numbers it finds, and those numbers are parsed with the
// same pattern the chat path uses. The courses are merged into the session's
// transcript and completed sets and each is looked up in the catalog.
package transcript
