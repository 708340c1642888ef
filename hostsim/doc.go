// Package hostsim is a simulated IFSF authorization host for demos and tests.
//
// The host listens with an nbio event loop. Every connection owns a Framer
// that collects the TCP stream into complete message bodies, and each body
// goes straight from its segment buffer through the decoder to a Responder.
//
// # Responses
//
//   - 1800 is answered with a 1810 carrying action code 800.
//   - 1100 is answered with a 1110 describing the configured card.
//   - 1200 is answered with a 1210 echoing the amount and batch number.
//
// Card and purchase answers use the configured action code, which defaults
// to approved. Approved answers carry a retrieval reference number and an
// approval code taken from a per-responder sequence.
//
// # Basic Usage
//
//	srv, err := hostsim.NewServer("127.0.0.1:9000",
//		hostsim.WithResponder(responder),
//	)
//	if err != nil {
//		return err
//	}
//	if err := srv.Start(); err != nil {
//		return err
//	}
//	defer srv.Stop()
package hostsim
