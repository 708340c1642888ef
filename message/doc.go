// Package message assembles and parses IFSF messages against schema descriptors.
//
// Field values are held in a *Fields, an ordered map from field number to a
// tagged Value. Composite fields hold a nested *Fields; a repeating group holds
// its header fields plus an Items value under schema.ItemsField.
//
// Encoding writes into a buffer.SegmentBuffer: a 4-digit length placeholder,
// the MTI, the bitmap and the present fields in ascending order. Composite
// length prefixes and the frame header are patched once their content is
// known. Decoding reads from any buffer.Cursor and walks nested composites
// through buffer.Limit, so nothing is copied out of the source buffer except
// the decoded values.
//
// Every failure is reported as a *errs.FieldError whose Path locates the
// field, e.g. "48.4" or "63.64[0].5".
package message
