package hostsim

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arloliu/ifsf"
	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/internal/collision"
	"github.com/arloliu/ifsf/internal/hash"
	"github.com/arloliu/ifsf/internal/options"
	"github.com/arloliu/ifsf/message"
)

// DefaultCard is the card described in 1110 answers unless WithCard is used.
var DefaultCard = ifsf.CardDetails{
	PINProtection:       1,
	Type:                ifsf.CardTypeFleet,
	AllowedPaymentTypes: 1,
}

// DefaultDuplicateWindow is the number of recent card and purchase requests
// checked for duplicate transmission.
const DefaultDuplicateWindow = 4096

// maxRetrievalReference is the largest value DE37 can carry.
const maxRetrievalReference = 999_999_999_999

// Responder turns decoded requests into host answers. It is safe for
// concurrent use.
type Responder struct {
	assembler      *message.Assembler
	actionCode     int
	card           ifsf.CardDetails
	cardAcceptorID string
	now            func() time.Time
	seq            atomic.Int64
	tracker        *collision.Tracker
}

// ResponderOption configures a Responder.
type ResponderOption = options.Option[*Responder]

// WithActionCode sets the DE39 action code of card and purchase answers.
func WithActionCode(code int) ResponderOption {
	return options.New(func(r *Responder) error {
		if code < 0 || code > 999 {
			return fmt.Errorf("invalid action code: %d", code)
		}
		r.actionCode = code

		return nil
	})
}

// WithCard sets the card described in 1110 answers.
func WithCard(card ifsf.CardDetails) ResponderOption {
	return options.NoError(func(r *Responder) {
		r.card = card
	})
}

// WithCardAcceptorID sets DE42 on card and purchase answers.
func WithCardAcceptorID(id string) ResponderOption {
	return options.New(func(r *Responder) error {
		if len(id) > 15 {
			return fmt.Errorf("card acceptor id %q longer than 15 characters", id)
		}
		r.cardAcceptorID = id

		return nil
	})
}

// WithAssembler sets the assembler used to decode requests and encode
// answers. The default is message.Default.
func WithAssembler(a *message.Assembler) ResponderOption {
	return options.New(func(r *Responder) error {
		if a == nil {
			return fmt.Errorf("nil assembler")
		}
		r.assembler = a

		return nil
	})
}

// WithClock sets the source of DE7 transmission times.
func WithClock(now func() time.Time) ResponderOption {
	return options.New(func(r *Responder) error {
		if now == nil {
			return fmt.Errorf("nil clock")
		}
		r.now = now

		return nil
	})
}

// WithSequenceStart sets the last issued retrieval reference number.
func WithSequenceStart(n int64) ResponderOption {
	return options.New(func(r *Responder) error {
		if n < 0 || n >= maxRetrievalReference {
			return fmt.Errorf("invalid sequence start: %d", n)
		}
		r.seq.Store(n)

		return nil
	})
}

// WithDuplicateWindow sets how many recent requests are remembered for
// duplicate detection. Zero disables it.
func WithDuplicateWindow(n int) ResponderOption {
	return options.New(func(r *Responder) error {
		if n < 0 {
			return fmt.Errorf("invalid duplicate window: %d", n)
		}
		r.tracker = nil
		if n > 0 {
			r.tracker = collision.NewTracker(n)
		}

		return nil
	})
}

// NewResponder creates a Responder that approves everything by default.
func NewResponder(opts ...ResponderOption) (*Responder, error) {
	r := &Responder{
		assembler:  message.Default,
		actionCode: ifsf.ActionApproved,
		card:       DefaultCard,
		now:        time.Now,
		tracker:    collision.NewTracker(DefaultDuplicateWindow),
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Assembler returns the assembler the responder decodes and encodes with.
func (r *Responder) Assembler() *message.Assembler {
	return r.assembler
}

// Duplicates returns how many retransmissions were answered from the cache
// and how many reused a terminal and STAN for a different request.
func (r *Responder) Duplicates() (repeats, conflicts int) {
	if r.tracker == nil {
		return 0, 0
	}

	return r.tracker.Repeats(), r.tracker.Conflicts()
}

func approves(action int) bool {
	return action == ifsf.ActionApproved || action == ifsf.ActionPartiallyApproved
}

// next returns the next retrieval reference number, wrapping within twelve
// digits.
func (r *Responder) next() int64 {
	for {
		cur := r.seq.Load()
		n := cur + 1
		if n > maxRetrievalReference {
			n = 1
		}
		if r.seq.CompareAndSwap(cur, n) {
			return n
		}
	}
}

func approvalCode(rrn int64) string {
	return fmt.Sprintf("%06d", rrn%1_000_000)
}

// Respond builds the answer to req.
//
// Returns errs.ErrUnknownMessageType for messages a host does not answer.
func (r *Responder) Respond(req ifsf.Message) (ifsf.Message, error) {
	return r.respond(req, r.actionCode)
}

func (r *Responder) respond(req ifsf.Message, action int) (ifsf.Message, error) {
	now := r.now()

	switch m := req.(type) {
	case *ifsf.NetworkManagementRequest:
		return &ifsf.NetworkManagementResponse{
			TransmissionTime: now,
			STAN:             m.STAN,
			AcquirerID:       m.AcquirerID,
			ActionCode:       ifsf.ActionNetworkAccepted,
		}, nil

	case *ifsf.CardInformationRequest:
		resp := &ifsf.CardInformationResponse{
			ProcessingCode:     m.ProcessingCode,
			TransmissionTime:   now,
			STAN:               m.STAN,
			LocalTime:          m.LocalTime,
			AcquirerID:         m.AcquirerID,
			RetrievalReference: r.next(),
			ActionCode:         action,
			TerminalID:         m.TerminalID,
			CardAcceptorID:     r.cardAcceptorID,
			Card:               r.card,
		}
		if approves(action) {
			resp.ApprovalCode = approvalCode(resp.RetrievalReference)
		}

		return resp, nil

	case *ifsf.PurchaseRequest:
		resp := &ifsf.PurchaseResponse{
			ProcessingCode:   m.ProcessingCode,
			Amount:           m.Amount,
			TransmissionTime: now,
			STAN:             m.STAN,
			LocalTime:        m.LocalTime,
			AcquirerID:       m.AcquirerID,
			ActionCode:       action,
			TerminalID:       m.TerminalID,
			CardAcceptorID:   r.cardAcceptorID,
			BatchSequence:    m.BatchSequence,
			CurrencyCode:     fmt.Sprintf("%03d", m.CurrencyCode),
		}
		if approves(action) {
			rrn := r.next()
			resp.RetrievalReference = &rrn
			resp.ApprovalCode = approvalCode(rrn)
		}
		if action == ifsf.ActionPartiallyApproved {
			original := m.Amount
			resp.OriginalAmounts = &original
		}

		return resp, nil

	default:
		return nil, fmt.Errorf("%w: host does not answer %s", errs.ErrUnknownMessageType, req.MTI())
	}
}

// transactionKey identifies a card or purchase request for duplicate
// detection.
func transactionKey(req ifsf.Message) (string, bool) {
	switch m := req.(type) {
	case *ifsf.CardInformationRequest:
		return fmt.Sprintf("%s/%s/%06d", m.MTI(), m.TerminalID, m.STAN), true
	case *ifsf.PurchaseRequest:
		return fmt.Sprintf("%s/%s/%06d", m.MTI(), m.TerminalID, m.STAN), true
	default:
		return "", false
	}
}

// Handle decodes a request body held in a reading buffer and returns the
// framed answer.
//
// A byte-identical retransmission of a recent card or purchase request gets
// the original answer again. A different request reusing its terminal and
// STAN is answered with ifsf.ActionDuplicate.
func (r *Responder) Handle(mti string, body *buffer.SegmentBuffer) ([]byte, error) {
	desc, err := ifsf.Registry().Lookup(mti)
	if err != nil {
		return nil, err
	}
	raw, err := body.Bytes()
	if err != nil {
		return nil, err
	}
	f, err := r.assembler.DecodeBuffer(body, desc)
	if err != nil {
		return nil, err
	}

	req, err := ifsf.New(mti)
	if err != nil {
		return nil, err
	}
	if err := req.SetFields(f); err != nil {
		return nil, err
	}

	action := r.actionCode
	key, tracked := transactionKey(req)
	tracked = tracked && r.tracker != nil
	if tracked {
		switch outcome, cached := r.tracker.Track(key, hash.Sum(raw)); outcome {
		case collision.Repeat:
			if cached != nil {
				return cached, nil
			}
		case collision.Conflict:
			action = ifsf.ActionDuplicate
			tracked = false
		}
	}

	resp, err := r.respond(req, action)
	if err != nil {
		return nil, err
	}
	frame, err := ifsf.Encode(r.assembler, resp)
	if err != nil {
		return nil, err
	}
	if tracked {
		r.tracker.Store(key, frame)
	}

	return frame, nil
}
