package ifsf

import (
	"time"

	"github.com/arloliu/ifsf/message"
	"github.com/arloliu/ifsf/schema"
)

// Function codes.
const (
	FunctionCardInformation   = 100
	FunctionPurchase          = 200
	FunctionNetworkManagement = 800
)

// Action codes.
const (
	ActionApproved          = 0
	ActionPartiallyApproved = 2
	ActionDoNotHonour       = 100
	ActionExpiredCard       = 101
	ActionInsufficientFunds = 116
	ActionIncorrectPIN      = 117
	ActionSystemError       = 909
	ActionDuplicate         = 913 // duplicate transmission
	ActionNetworkAccepted   = 800
)

// NetworkManagementRequest is the 1800 echo test a terminal sends to check
// the host link.
type NetworkManagementRequest struct {
	// TransmissionTime defaults to the current UTC time.
	TransmissionTime time.Time
	STAN             int
	// FunctionCode defaults to FunctionNetworkManagement.
	FunctionCode int
	AcquirerID   string
}

var _ Message = (*NetworkManagementRequest)(nil)

// MTI returns the message type identifier of NetworkManagementRequest.
func (m *NetworkManagementRequest) MTI() string { return MTINetworkManagementRequest }

// Descriptor returns the wire layout of NetworkManagementRequest.
func (m *NetworkManagementRequest) Descriptor() *schema.MessageDescriptor {
	return NetworkManagementRequestDescriptor
}

// Fields converts the message to its field values, applying defaults.
func (m *NetworkManagementRequest) Fields() (*message.Fields, error) {
	return message.NewFields().
		Set(FieldTransmissionTime, message.Time(orNowUTC(m.TransmissionTime))).
		Set(FieldSTAN, message.Int(int64(m.STAN))).
		Set(FieldFunctionCode, message.Int(int64(orDefault(m.FunctionCode, FunctionNetworkManagement)))).
		Set(FieldAcquirerID, message.Text(m.AcquirerID)), nil
}

// SetFields fills the message from decoded field values.
func (m *NetworkManagementRequest) SetFields(f *message.Fields) error {
	r := newFieldReader(f)
	m.TransmissionTime = r.time(FieldTransmissionTime)
	m.STAN = r.int(FieldSTAN)
	m.FunctionCode = r.int(FieldFunctionCode)
	m.AcquirerID = r.text(FieldAcquirerID)

	return r.Err()
}

// NetworkManagementResponse is the host's 1810 answer to an echo test.
type NetworkManagementResponse struct {
	TransmissionTime time.Time
	STAN             int
	AcquirerID       string
	ActionCode       int
}

var _ Message = (*NetworkManagementResponse)(nil)

// Approved reports whether the host accepted the echo test.
func (m *NetworkManagementResponse) Approved() bool {
	return m.ActionCode == ActionNetworkAccepted
}

// MTI returns the message type identifier of NetworkManagementResponse.
func (m *NetworkManagementResponse) MTI() string { return MTINetworkManagementResponse }

// Descriptor returns the wire layout of NetworkManagementResponse.
func (m *NetworkManagementResponse) Descriptor() *schema.MessageDescriptor {
	return NetworkManagementResponseDescriptor
}

// Fields converts the response to its field values.
func (m *NetworkManagementResponse) Fields() (*message.Fields, error) {
	return message.NewFields().
		Set(FieldTransmissionTime, message.Time(m.TransmissionTime)).
		Set(FieldSTAN, message.Int(int64(m.STAN))).
		Set(FieldAcquirerID, message.Text(m.AcquirerID)).
		Set(FieldActionCode, message.Int(int64(m.ActionCode))), nil
}

// SetFields fills the response from decoded field values.
func (m *NetworkManagementResponse) SetFields(f *message.Fields) error {
	r := newFieldReader(f)
	m.TransmissionTime = r.time(FieldTransmissionTime)
	m.STAN = r.int(FieldSTAN)
	m.AcquirerID = r.text(FieldAcquirerID)
	m.ActionCode = r.int(FieldActionCode)

	return r.Err()
}
