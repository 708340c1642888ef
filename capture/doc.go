// Package capture records IFSF frames into compact, checksummed archives and
// reads them back.
//
// An archive keeps every frame exchanged on a host link together with its
// receive time and direction. Archives serve as regression fixtures: a frame
// captured from a live host can be checked into the repository and replayed
// through the decoder in tests, and the demo client can record a whole session
// for later inspection.
//
// # Writing
//
//	w, err := capture.NewWriter(capture.WithCompression(format.CompressionZstd))
//	if err != nil {
//	    return err
//	}
//	_ = w.Add(capture.Frame{Time: time.Now(), Direction: capture.Outbound, Bytes: request})
//	_ = w.Add(capture.Frame{Time: time.Now(), Direction: capture.Inbound, Bytes: response})
//	data, err := w.Finish()
//
// # Reading
//
//	r, err := capture.Open(data)
//	if err != nil {
//	    return err
//	}
//	for i, f := range r.All() {
//	    fmt.Println(i, f.Direction, len(f.Bytes))
//	}
//
// Open verifies the xxHash64 checksum of every frame, so a Reader never hands
// out corrupted frames.
//
// A Writer is safe for concurrent use; a Reader is immutable once opened.
package capture
