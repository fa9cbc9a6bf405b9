// Package csvexport serializes flat records to CSV text and saves the result
// through an ordered list of save strategies.
//
// The CSV dialect matches the legacy admin console export: every field is
// wrapped in double quotes, fields are joined by commas, lines end with CRLF,
// and the file starts with a UTF-8 byte-order mark so spreadsheet tools pick
// the right encoding.
//
// Known limitation: quotes and commas inside values are written as-is and are
// not escaped. Values containing them produce CSV that other parsers will
// split differently. Check arbitrary user text with NeedsEscaping first;
// paperstat export logs a warning naming each affected question.
package csvexport
