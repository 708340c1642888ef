package ifsf

import (
	"github.com/arloliu/ifsf/encoding"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/schema"
)

// Message type indicators.
const (
	MTICardInformationRequest    = "1100"
	MTICardInformationResponse   = "1110"
	MTIPurchaseRequest           = "1200"
	MTIPurchaseResponse          = "1210"
	MTINetworkManagementRequest  = "1800"
	MTINetworkManagementResponse = "1810"
)

// Data element numbers.
const (
	FieldPAN                = 2
	FieldProcessingCode     = 3
	FieldAmount             = 4
	FieldTransmissionTime   = 7
	FieldSTAN               = 11
	FieldLocalTime          = 12
	FieldPOSDataCode        = 22
	FieldFunctionCode       = 24
	FieldBusinessCode       = 26
	FieldOriginalAmounts    = 30
	FieldAcquirerID         = 32
	FieldRetrievalReference = 37
	FieldApprovalCode       = 38
	FieldActionCode         = 39
	FieldTerminalID         = 41
	FieldCardAcceptorID     = 42
	FieldAdditionalResponse = 44
	FieldMessageControl     = 48
	FieldCurrencyCode       = 49
	FieldPINData            = 52
	FieldSecurityControl    = 53
	FieldTransportData      = 59
	FieldProductData        = 63
)

// DE48 message control sub-fields.
const (
	SubFieldLanguageCode   = 3
	SubFieldBatchSequence  = 4
	SubFieldPINEncryption  = 14
	SubFieldVATPercentages = 32
)

// DE44 additional response sub-fields.
const (
	SubFieldPINProtection   = 2
	SubFieldCardType        = 3
	SubFieldAllowedPayments = 4
	SubFieldCardExpiration  = 5
)

// DE63 product data header and item fields.
const (
	SubFieldServiceLevel    = 1
	SubFieldItemCount       = 2
	SubFieldProductFormatID = 3

	ItemFieldPaymentType   = 1
	ItemFieldUnitOfMeasure = 2
	ItemFieldVATCode       = 3
	ItemFieldProductCode   = 4
	ItemFieldQuantity      = 5
	ItemFieldUnitPrice     = 6
	ItemFieldAmount        = 7

	productItemSeparator      = '/'
	productItemValueDelimiter = '\\'
)

var (
	dePAN              = schema.NewField(FieldPAN, "PAN", format.LLVar, 19, schema.Optional())
	deProcessingCode   = schema.NewField(FieldProcessingCode, "ProcessingCode", format.FixedNumeric, 6)
	deAmount           = schema.NewField(FieldAmount, "Amount", format.ScaledDecimal, 12)
	deTransmissionTime = schema.NewField(FieldTransmissionTime, "TransmissionDateTime", format.ShortTimestamp, encoding.ShortTimestampLength)
	deSTAN             = schema.NewField(FieldSTAN, "STAN", format.FixedNumeric, 6)
	deLocalTime        = schema.NewField(FieldLocalTime, "LocalDateTime", format.LongTimestamp, encoding.LongTimestampLength)
	dePOSDataCode      = schema.NewField(FieldPOSDataCode, "PointOfServiceDataCode", format.FixedText, 12)
	deFunctionCode     = schema.NewField(FieldFunctionCode, "FunctionCode", format.FixedNumeric, 3)
	deBusinessCode     = schema.NewField(FieldBusinessCode, "CardAcceptorBusinessCode", format.FixedNumeric, 4)
	deAcquirerID       = schema.NewField(FieldAcquirerID, "AcquirerID", format.LLVar, 99)
	deRRN              = schema.NewField(FieldRetrievalReference, "RetrievalReferenceNumber", format.FixedNumeric, 12)
	deApprovalCode     = schema.NewField(FieldApprovalCode, "ApprovalCode", format.FixedText, 6)
	deActionCode       = schema.NewField(FieldActionCode, "ActionCode", format.FixedNumeric, 3)
	deTerminalID       = schema.NewField(FieldTerminalID, "TerminalID", format.FixedText, 8)
	deCardAcceptorID   = schema.NewField(FieldCardAcceptorID, "CardAcceptorIDCode", format.FixedText, 15, schema.Optional())
	deTransportData    = schema.NewField(FieldTransportData, "TransportData", format.LLLVar, 999, schema.Optional())
)

// ProductItemTemplate is the layout of one DE63 sale item.
var ProductItemTemplate = schema.NewItemTemplate(productItemSeparator,
	schema.NewField(ItemFieldPaymentType, "PaymentType", format.FixedText, 1),
	schema.NewField(ItemFieldUnitOfMeasure, "UnitOfMeasure", format.FixedText, 1),
	schema.NewField(ItemFieldVATCode, "VatCode", format.FixedNumeric, 1),
	schema.NewField(ItemFieldProductCode, "ProductCode", format.FixedTextNoPad, 17),
	schema.NewField(ItemFieldQuantity, "Quantity", format.FreeDecimal3, 9, schema.Before(productItemValueDelimiter)),
	schema.NewField(ItemFieldUnitPrice, "UnitPrice", format.FreeDecimal2, 9, schema.Before(productItemValueDelimiter)),
	schema.NewField(ItemFieldAmount, "Amount", format.FreeDecimal2, 12, schema.Before(productItemValueDelimiter)),
)

var deProductData = schema.NewField(FieldProductData, "ProductData", format.DelimitedComposite, 999, schema.Nested(
	schema.NewRepeatingGroup("ProductData", 3, ProductItemTemplate,
		schema.NewField(SubFieldServiceLevel, "ServiceLevel", format.FixedText, 1),
		schema.NewField(SubFieldItemCount, "ItemCount", format.FixedNumeric, 2),
		schema.NewField(SubFieldProductFormatID, "FormatID", format.FixedText, 1),
	).CountedBy(SubFieldItemCount),
))

// NetworkManagementRequestDescriptor is the 1800 echo test layout.
var NetworkManagementRequestDescriptor = schema.MustNewMessage(MTINetworkManagementRequest, "NetworkManagementRequest",
	deTransmissionTime,
	deSTAN,
	deFunctionCode,
	deAcquirerID,
)

// NetworkManagementResponseDescriptor is the 1810 layout.
var NetworkManagementResponseDescriptor = schema.MustNewMessage(MTINetworkManagementResponse, "NetworkManagementResponse",
	deTransmissionTime,
	deSTAN,
	deAcquirerID,
	deActionCode,
)

// CardInformationRequestDescriptor is the 1100 layout.
var CardInformationRequestDescriptor = schema.MustNewMessage(MTICardInformationRequest, "CardInformationRequest",
	dePAN,
	deProcessingCode,
	deTransmissionTime,
	deSTAN,
	deLocalTime,
	dePOSDataCode,
	deFunctionCode,
	deBusinessCode,
	deAcquirerID,
	deTerminalID,
	schema.NewField(FieldMessageControl, "MessageControlData", format.BitmapComposite, 999, schema.Nested(
		schema.NewBitmapComposite("MessageControlData", 3,
			schema.NewField(SubFieldLanguageCode, "LanguageCode", format.FixedText, 2),
		),
	)),
)

// CardInformationResponseDescriptor is the 1110 layout.
var CardInformationResponseDescriptor = schema.MustNewMessage(MTICardInformationResponse, "CardInformationResponse",
	deProcessingCode,
	deTransmissionTime,
	deSTAN,
	deLocalTime,
	deAcquirerID,
	deRRN,
	deApprovalCode,
	deActionCode,
	deTerminalID,
	deCardAcceptorID,
	schema.NewField(FieldAdditionalResponse, "AdditionalResponseData", format.BitmapComposite, 999, schema.Nested(
		schema.NewBitmapComposite("AdditionalResponseData", 3,
			schema.NewField(SubFieldPINProtection, "PinProtection", format.FixedNumeric, 1),
			schema.NewField(SubFieldCardType, "CardType", format.FixedNumeric, 3),
			schema.NewField(SubFieldAllowedPayments, "AllowedPaymentTypes", format.FixedNumeric, 2),
			schema.NewField(SubFieldCardExpiration, "ExpirationDate", format.LongTimestamp, encoding.LongTimestampLength, schema.Optional()),
		),
	)),
	deTransportData,
)

// PurchaseRequestDescriptor is the 1200 layout.
var PurchaseRequestDescriptor = schema.MustNewMessage(MTIPurchaseRequest, "PurchaseRequest",
	dePAN,
	deProcessingCode,
	deAmount,
	deTransmissionTime,
	deSTAN,
	deLocalTime,
	dePOSDataCode,
	deFunctionCode,
	deBusinessCode,
	deAcquirerID,
	deTerminalID,
	schema.NewField(FieldMessageControl, "MessageControlData", format.BitmapComposite, 999, schema.Nested(
		schema.NewBitmapComposite("MessageControlData", 3,
			schema.NewField(SubFieldLanguageCode, "LanguageCode", format.FixedText, 2),
			schema.NewField(SubFieldBatchSequence, "BatchSequenceNumber", format.FixedNumeric, 10),
			schema.NewField(SubFieldPINEncryption, "PinEncryptionMethodology", format.FixedNumeric, 2, schema.Optional()),
			schema.NewField(SubFieldVATPercentages, "VatPercentages", format.LLVar, 99),
		),
	)),
	schema.NewField(FieldCurrencyCode, "CurrencyCode", format.FixedNumeric, 3),
	schema.NewField(FieldPINData, "PinData", format.RawBytes, 8, schema.Optional()),
	schema.NewField(FieldSecurityControl, "SecurityControlInfo", format.LengthPrefixedBytes, 48),
	deProductData,
)

// PurchaseResponseDescriptor is the 1210 layout.
var PurchaseResponseDescriptor = schema.MustNewMessage(MTIPurchaseResponse, "PurchaseResponse",
	deProcessingCode,
	deAmount,
	deTransmissionTime,
	deSTAN,
	deLocalTime,
	schema.NewField(FieldOriginalAmounts, "OriginalAmounts", format.ScaledDecimal, 24, schema.Optional()),
	deAcquirerID,
	schema.NewField(FieldRetrievalReference, "RetrievalReferenceNumber", format.FixedNumeric, 12, schema.Optional()),
	schema.NewField(FieldApprovalCode, "ApprovalCode", format.FixedText, 6, schema.Optional()),
	deActionCode,
	deTerminalID,
	deCardAcceptorID,
	schema.NewField(FieldMessageControl, "MessageControlData", format.BitmapComposite, 999, schema.Nested(
		schema.NewBitmapComposite("MessageControlData", 3,
			schema.NewField(SubFieldBatchSequence, "BatchSequenceNumber", format.FixedNumeric, 10),
		),
	)),
	schema.NewField(FieldCurrencyCode, "CurrencyCode", format.FixedText, 3),
	deTransportData,
)
