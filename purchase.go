package ifsf

import (
	"time"

	"github.com/arloliu/ifsf/message"
	"github.com/arloliu/ifsf/schema"
	"github.com/shopspring/decimal"
)

// ServiceLevel is the DE63 forecourt service indicator.
type ServiceLevel string

const (
	ServiceLevelFull        ServiceLevel = "F"
	ServiceLevelSelf        ServiceLevel = "S"
	ServiceLevelUnspecified ServiceLevel = ""
)

// DefaultProductFormatID is the DE63 format identifier written when none is set.
const DefaultProductFormatID = "0"

// SaleItem is one DE63 product line.
type SaleItem struct {
	PaymentType   string
	UnitOfMeasure string
	VATCode       int
	ProductCode   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Amount        decimal.Decimal
}

// ProductData is the DE63 sale item list.
type ProductData struct {
	ServiceLevel ServiceLevel
	FormatID     string
	Items        []SaleItem
}

// Total returns the sum of the item amounts.
func (p ProductData) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Amount)
	}

	return total
}

func (p ProductData) fields() *message.Fields {
	items := make([]*message.Fields, len(p.Items))
	for i, item := range p.Items {
		items[i] = message.NewFields().
			Set(ItemFieldPaymentType, message.Text(item.PaymentType)).
			Set(ItemFieldUnitOfMeasure, message.Text(item.UnitOfMeasure)).
			Set(ItemFieldVATCode, message.Int(int64(item.VATCode))).
			Set(ItemFieldProductCode, message.Text(item.ProductCode)).
			Set(ItemFieldQuantity, message.Decimal(item.Quantity)).
			Set(ItemFieldUnitPrice, message.Decimal(item.UnitPrice)).
			Set(ItemFieldAmount, message.Decimal(item.Amount))
	}

	return message.NewFields().
		Set(SubFieldServiceLevel, message.Text(string(p.ServiceLevel))).
		Set(SubFieldProductFormatID, message.Text(orDefaultText(p.FormatID, DefaultProductFormatID))).
		Set(schema.ItemsField, message.Items(items...))
}

func readProductData(r *fieldReader) ProductData {
	p := ProductData{
		ServiceLevel: ServiceLevel(r.text(SubFieldServiceLevel)),
		FormatID:     r.text(SubFieldProductFormatID),
	}
	for _, ir := range r.items(schema.ItemsField) {
		p.Items = append(p.Items, SaleItem{
			PaymentType:   ir.text(ItemFieldPaymentType),
			UnitOfMeasure: ir.text(ItemFieldUnitOfMeasure),
			VATCode:       ir.int(ItemFieldVATCode),
			ProductCode:   ir.text(ItemFieldProductCode),
			Quantity:      ir.decimal(ItemFieldQuantity),
			UnitPrice:     ir.decimal(ItemFieldUnitPrice),
			Amount:        ir.decimal(ItemFieldAmount),
		})
	}

	return p
}

// PurchaseRequest is the 1200 fuel purchase authorization.
//
// Zero-valued FunctionCode, BusinessCode and LanguageCode are replaced by
// their defaults when encoding, as are zero TransmissionTime (current UTC
// time) and LocalTime (current local time). PINData and PINEncryption are
// sent only when set.
type PurchaseRequest struct {
	PAN              string
	ProcessingCode   int
	Amount           decimal.Decimal
	TransmissionTime time.Time
	STAN             int
	LocalTime        time.Time
	POSDataCode      string
	FunctionCode     int
	BusinessCode     int
	AcquirerID       string
	TerminalID       string
	LanguageCode     string
	BatchSequence    int64
	PINEncryption    *int
	VATPercentages   string
	CurrencyCode     int
	PINData          []byte
	SecurityControl  []byte
	Products         ProductData
}

var _ Message = (*PurchaseRequest)(nil)

// MTI returns the message type identifier of PurchaseRequest.
func (m *PurchaseRequest) MTI() string { return MTIPurchaseRequest }

// Descriptor returns the wire layout of PurchaseRequest.
func (m *PurchaseRequest) Descriptor() *schema.MessageDescriptor {
	return PurchaseRequestDescriptor
}

// Fields converts the message to its field values, applying defaults.
func (m *PurchaseRequest) Fields() (*message.Fields, error) {
	control := message.NewFields().
		Set(SubFieldLanguageCode, message.Text(orDefaultText(m.LanguageCode, DefaultLanguageCode))).
		Set(SubFieldBatchSequence, message.Int(m.BatchSequence)).
		Set(SubFieldVATPercentages, message.Text(m.VATPercentages))
	setOptInt(control, SubFieldPINEncryption, m.PINEncryption)

	f := message.NewFields()
	setOptText(f, FieldPAN, m.PAN)
	f.Set(FieldProcessingCode, message.Int(int64(m.ProcessingCode))).
		Set(FieldAmount, message.Decimal(m.Amount)).
		Set(FieldTransmissionTime, message.Time(orNowUTC(m.TransmissionTime))).
		Set(FieldSTAN, message.Int(int64(m.STAN))).
		Set(FieldLocalTime, message.Time(orNowLocal(m.LocalTime))).
		Set(FieldPOSDataCode, message.Text(m.POSDataCode)).
		Set(FieldFunctionCode, message.Int(int64(orDefault(m.FunctionCode, FunctionPurchase)))).
		Set(FieldBusinessCode, message.Int(int64(orDefault(m.BusinessCode, DefaultBusinessCode)))).
		Set(FieldAcquirerID, message.Text(m.AcquirerID)).
		Set(FieldTerminalID, message.Text(m.TerminalID)).
		Set(FieldMessageControl, message.Composite(control)).
		Set(FieldCurrencyCode, message.Int(int64(m.CurrencyCode))).
		Set(FieldSecurityControl, message.Bytes(m.SecurityControl)).
		Set(FieldProductData, message.Composite(m.Products.fields()))
	setOptBytes(f, FieldPINData, m.PINData)

	return f, nil
}

// SetFields fills the message from decoded field values.
func (m *PurchaseRequest) SetFields(f *message.Fields) error {
	r := newFieldReader(f)
	m.PAN = r.optText(FieldPAN)
	m.ProcessingCode = r.int(FieldProcessingCode)
	m.Amount = r.decimal(FieldAmount)
	m.TransmissionTime = r.time(FieldTransmissionTime)
	m.STAN = r.int(FieldSTAN)
	m.LocalTime = r.time(FieldLocalTime)
	m.POSDataCode = r.text(FieldPOSDataCode)
	m.FunctionCode = r.int(FieldFunctionCode)
	m.BusinessCode = r.int(FieldBusinessCode)
	m.AcquirerID = r.text(FieldAcquirerID)
	m.TerminalID = r.text(FieldTerminalID)
	m.CurrencyCode = r.int(FieldCurrencyCode)
	m.PINData = r.optBytes(FieldPINData)
	m.SecurityControl = r.bytes(FieldSecurityControl)

	control := r.composite(FieldMessageControl)
	m.LanguageCode = control.text(SubFieldLanguageCode)
	m.BatchSequence = control.int64(SubFieldBatchSequence)
	m.PINEncryption = control.optInt(SubFieldPINEncryption)
	m.VATPercentages = control.text(SubFieldVATPercentages)

	m.Products = readProductData(r.composite(FieldProductData))

	return r.Err()
}

// PurchaseResponse is the host's 1210 answer to a purchase.
type PurchaseResponse struct {
	ProcessingCode     int
	Amount             decimal.Decimal
	TransmissionTime   time.Time
	STAN               int
	LocalTime          time.Time
	OriginalAmounts    *decimal.Decimal
	AcquirerID         string
	RetrievalReference *int64
	ApprovalCode       string
	ActionCode         int
	TerminalID         string
	CardAcceptorID     string
	BatchSequence      int64
	CurrencyCode       string
	TransportData      string
}

var _ Message = (*PurchaseResponse)(nil)

// Approved reports whether the purchase was approved in full or in part.
func (m *PurchaseResponse) Approved() bool {
	return m.ActionCode == ActionApproved || m.ActionCode == ActionPartiallyApproved
}

// MTI returns the message type identifier of PurchaseResponse.
func (m *PurchaseResponse) MTI() string { return MTIPurchaseResponse }

// Descriptor returns the wire layout of PurchaseResponse.
func (m *PurchaseResponse) Descriptor() *schema.MessageDescriptor {
	return PurchaseResponseDescriptor
}

// Fields converts the response to its field values.
func (m *PurchaseResponse) Fields() (*message.Fields, error) {
	f := message.NewFields().
		Set(FieldProcessingCode, message.Int(int64(m.ProcessingCode))).
		Set(FieldAmount, message.Decimal(m.Amount)).
		Set(FieldTransmissionTime, message.Time(m.TransmissionTime)).
		Set(FieldSTAN, message.Int(int64(m.STAN))).
		Set(FieldLocalTime, message.Time(m.LocalTime)).
		Set(FieldAcquirerID, message.Text(m.AcquirerID)).
		Set(FieldActionCode, message.Int(int64(m.ActionCode))).
		Set(FieldTerminalID, message.Text(m.TerminalID)).
		Set(FieldMessageControl, message.Composite(message.NewFields().
			Set(SubFieldBatchSequence, message.Int(m.BatchSequence)))).
		Set(FieldCurrencyCode, message.Text(m.CurrencyCode))
	setOptDecimal(f, FieldOriginalAmounts, m.OriginalAmounts)
	setOptInt64(f, FieldRetrievalReference, m.RetrievalReference)
	setOptText(f, FieldApprovalCode, m.ApprovalCode)
	setOptText(f, FieldCardAcceptorID, m.CardAcceptorID)
	setOptText(f, FieldTransportData, m.TransportData)

	return f, nil
}

// SetFields fills the response from decoded field values. Optional fields
// absent from f are left empty.
func (m *PurchaseResponse) SetFields(f *message.Fields) error {
	r := newFieldReader(f)
	m.ProcessingCode = r.int(FieldProcessingCode)
	m.Amount = r.decimal(FieldAmount)
	m.TransmissionTime = r.time(FieldTransmissionTime)
	m.STAN = r.int(FieldSTAN)
	m.LocalTime = r.time(FieldLocalTime)
	m.OriginalAmounts = r.optDecimal(FieldOriginalAmounts)
	m.AcquirerID = r.text(FieldAcquirerID)
	m.RetrievalReference = r.optInt64(FieldRetrievalReference)
	m.ApprovalCode = r.optText(FieldApprovalCode)
	m.ActionCode = r.int(FieldActionCode)
	m.TerminalID = r.text(FieldTerminalID)
	m.CardAcceptorID = r.optText(FieldCardAcceptorID)
	m.BatchSequence = r.composite(FieldMessageControl).int64(SubFieldBatchSequence)
	m.CurrencyCode = r.text(FieldCurrencyCode)
	m.TransportData = r.optText(FieldTransportData)

	return r.Err()
}
