package ifsf

import (
	"fmt"
	"time"

	"github.com/arloliu/ifsf/message"
	"github.com/arloliu/ifsf/schema"
)

// Defaults applied to zero-valued request fields.
const (
	DefaultCardInformationProcessingCode = 350000
	DefaultBusinessCode                  = 5541 // service stations
	DefaultLanguageCode                  = "RU"
)

// CardType classifies the card returned in DE44.
type CardType int

const (
	CardTypeGift        CardType = 3
	CardTypeBonus       CardType = 4
	CardTypeBank        CardType = 6
	CardTypeDiscount    CardType = 11
	CardTypeFleet       CardType = 20
	CardTypeFleetOneOff CardType = 21
)

// String returns the card type name, or its code for unknown types.
func (t CardType) String() string {
	switch t {
	case CardTypeGift:
		return "Gift"
	case CardTypeBonus:
		return "Bonus"
	case CardTypeBank:
		return "Bank"
	case CardTypeDiscount:
		return "Discount"
	case CardTypeFleet:
		return "Fleet"
	case CardTypeFleetOneOff:
		return "FleetOneOff"
	default:
		return fmt.Sprintf("CardType(%03d)", int(t))
	}
}

// CardInformationRequest is the 1100 card lookup sent before a purchase.
//
// Zero-valued ProcessingCode, FunctionCode, BusinessCode and LanguageCode are
// replaced by their defaults when encoding. A zero TransmissionTime becomes
// the current UTC time and a zero LocalTime the current local time.
type CardInformationRequest struct {
	PAN              string
	ProcessingCode   int
	TransmissionTime time.Time
	STAN             int
	LocalTime        time.Time
	POSDataCode      string
	FunctionCode     int
	BusinessCode     int
	AcquirerID       string
	TerminalID       string
	LanguageCode     string
}

var _ Message = (*CardInformationRequest)(nil)

// MTI returns the message type identifier of CardInformationRequest.
func (m *CardInformationRequest) MTI() string { return MTICardInformationRequest }

// Descriptor returns the wire layout of CardInformationRequest.
func (m *CardInformationRequest) Descriptor() *schema.MessageDescriptor {
	return CardInformationRequestDescriptor
}

// Fields converts the message to its field values, applying defaults.
func (m *CardInformationRequest) Fields() (*message.Fields, error) {
	f := message.NewFields()
	setOptText(f, FieldPAN, m.PAN)
	f.Set(FieldProcessingCode, message.Int(int64(orDefault(m.ProcessingCode, DefaultCardInformationProcessingCode)))).
		Set(FieldTransmissionTime, message.Time(orNowUTC(m.TransmissionTime))).
		Set(FieldSTAN, message.Int(int64(m.STAN))).
		Set(FieldLocalTime, message.Time(orNowLocal(m.LocalTime))).
		Set(FieldPOSDataCode, message.Text(m.POSDataCode)).
		Set(FieldFunctionCode, message.Int(int64(orDefault(m.FunctionCode, FunctionCardInformation)))).
		Set(FieldBusinessCode, message.Int(int64(orDefault(m.BusinessCode, DefaultBusinessCode)))).
		Set(FieldAcquirerID, message.Text(m.AcquirerID)).
		Set(FieldTerminalID, message.Text(m.TerminalID)).
		Set(FieldMessageControl, message.Composite(message.NewFields().
			Set(SubFieldLanguageCode, message.Text(orDefaultText(m.LanguageCode, DefaultLanguageCode)))))

	return f, nil
}

// SetFields fills the message from decoded field values.
func (m *CardInformationRequest) SetFields(f *message.Fields) error {
	r := newFieldReader(f)
	m.PAN = r.optText(FieldPAN)
	m.ProcessingCode = r.int(FieldProcessingCode)
	m.TransmissionTime = r.time(FieldTransmissionTime)
	m.STAN = r.int(FieldSTAN)
	m.LocalTime = r.time(FieldLocalTime)
	m.POSDataCode = r.text(FieldPOSDataCode)
	m.FunctionCode = r.int(FieldFunctionCode)
	m.BusinessCode = r.int(FieldBusinessCode)
	m.AcquirerID = r.text(FieldAcquirerID)
	m.TerminalID = r.text(FieldTerminalID)
	m.LanguageCode = r.composite(FieldMessageControl).text(SubFieldLanguageCode)

	return r.Err()
}

// CardDetails is the DE44 card description of a 1110 response.
type CardDetails struct {
	PINProtection       int
	Type                CardType
	AllowedPaymentTypes int
	Expiration          *time.Time
}

// CardInformationResponse is the host's 1110 answer to a card lookup.
type CardInformationResponse struct {
	ProcessingCode     int
	TransmissionTime   time.Time
	STAN               int
	LocalTime          time.Time
	AcquirerID         string
	RetrievalReference int64
	ApprovalCode       string
	ActionCode         int
	TerminalID         string
	CardAcceptorID     string
	Card               CardDetails
	TransportData      string
}

var _ Message = (*CardInformationResponse)(nil)

// Approved reports whether the host accepted the card.
func (m *CardInformationResponse) Approved() bool {
	return m.ActionCode == ActionApproved
}

// MTI returns the message type identifier of CardInformationResponse.
func (m *CardInformationResponse) MTI() string { return MTICardInformationResponse }

// Descriptor returns the wire layout of CardInformationResponse.
func (m *CardInformationResponse) Descriptor() *schema.MessageDescriptor {
	return CardInformationResponseDescriptor
}

// Fields converts the response to its field values.
func (m *CardInformationResponse) Fields() (*message.Fields, error) {
	card := message.NewFields().
		Set(SubFieldPINProtection, message.Int(int64(m.Card.PINProtection))).
		Set(SubFieldCardType, message.Int(int64(m.Card.Type))).
		Set(SubFieldAllowedPayments, message.Int(int64(m.Card.AllowedPaymentTypes)))
	setOptTime(card, SubFieldCardExpiration, m.Card.Expiration)

	f := message.NewFields().
		Set(FieldProcessingCode, message.Int(int64(m.ProcessingCode))).
		Set(FieldTransmissionTime, message.Time(m.TransmissionTime)).
		Set(FieldSTAN, message.Int(int64(m.STAN))).
		Set(FieldLocalTime, message.Time(m.LocalTime)).
		Set(FieldAcquirerID, message.Text(m.AcquirerID)).
		Set(FieldRetrievalReference, message.Int(m.RetrievalReference)).
		Set(FieldApprovalCode, message.Text(m.ApprovalCode)).
		Set(FieldActionCode, message.Int(int64(m.ActionCode))).
		Set(FieldTerminalID, message.Text(m.TerminalID)).
		Set(FieldAdditionalResponse, message.Composite(card))
	setOptText(f, FieldCardAcceptorID, m.CardAcceptorID)
	setOptText(f, FieldTransportData, m.TransportData)

	return f, nil
}

// SetFields fills the response from decoded field values. Optional fields
// absent from f are left empty.
func (m *CardInformationResponse) SetFields(f *message.Fields) error {
	r := newFieldReader(f)
	m.ProcessingCode = r.int(FieldProcessingCode)
	m.TransmissionTime = r.time(FieldTransmissionTime)
	m.STAN = r.int(FieldSTAN)
	m.LocalTime = r.time(FieldLocalTime)
	m.AcquirerID = r.text(FieldAcquirerID)
	m.RetrievalReference = r.int64(FieldRetrievalReference)
	m.ApprovalCode = r.text(FieldApprovalCode)
	m.ActionCode = r.int(FieldActionCode)
	m.TerminalID = r.text(FieldTerminalID)
	m.CardAcceptorID = r.optText(FieldCardAcceptorID)
	m.TransportData = r.optText(FieldTransportData)

	card := r.composite(FieldAdditionalResponse)
	m.Card = CardDetails{
		PINProtection:       card.int(SubFieldPINProtection),
		Type:                CardType(card.int(SubFieldCardType)),
		AllowedPaymentTypes: card.int(SubFieldAllowedPayments),
		Expiration:          card.optTime(SubFieldCardExpiration),
	}

	return r.Err()
}
